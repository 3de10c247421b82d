package synpatico

import "time"

// richTypeKey and richValueKey are the envelope's reserved field names
// (§4.D): `{ "__type": "Date"|"Map"|"Set"|"Error", "value": ... }`.
const (
	richTypeKey  = "__type"
	richValueKey = "value"
)

const (
	richTagDate  = "Date"
	richTagMap   = "Map"
	richTagSet   = "Set"
	richTagError = "Error"
)

// valueFromJSON converts a value decoded by encoding/json (nil, bool,
// float64, string, []any, map[string]any) into a Value, detecting and
// unwrapping a §4.D envelope wherever one appears — at the root, nested
// inside an object field, or inside an array element alike, since the
// envelope can appear at any position a rich scalar could have occupied
// (§4.D doesn't special-case "top level of a Packet value" versus "a
// field of the original body"; both call through here).
func valueFromJSON(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(x), nil
	case float64:
		return Number(x), nil
	case string:
		return String(x), nil
	case []any:
		items := make([]Value, len(x))
		for i, item := range x {
			v, err := valueFromJSON(item)
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return Array(items...), nil
	case map[string]any:
		if rich, ok, err := unwrapEnvelope(x); ok || err != nil {
			return rich, err
		}
		fields := make([]Field, 0, len(x))
		for k, fv := range x {
			v, err := valueFromJSON(fv)
			if err != nil {
				return Value{}, err
			}
			fields = append(fields, Field{Key: k, Value: v})
		}
		return Object(fields...), nil
	default:
		return Value{}, dataErrf(nil, nil, "valueFromJSON: unsupported decoded type %T", x)
	}
}

// unwrapEnvelope recognizes a §4.D envelope object and returns the Value
// it encodes. ok is false when obj isn't shaped like an envelope at all
// (no __type key), in which case the caller should treat it as a plain
// object. An envelope with an *unrecognized* __type is the forward-
// compatibility case §4.D calls out explicitly: it is returned as the
// Value of its "value" field (or, lacking one, passed through as an
// ordinary object) rather than failing.
func unwrapEnvelope(obj map[string]any) (Value, bool, error) {
	tag, ok := obj[richTypeKey]
	if !ok {
		return Value{}, false, nil
	}
	tagStr, ok := tag.(string)
	if !ok {
		return Value{}, false, nil
	}
	raw, hasValue := obj[richValueKey]

	switch tagStr {
	case richTagDate:
		s, _ := raw.(string)
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return Value{}, true, dataErrf(nil, err, "invalid Date envelope value %q", s)
		}
		return DateValue(t), true, nil

	case richTagMap:
		pairs, _ := raw.([]any)
		entries := make([]MapEntry, 0, len(pairs))
		for _, p := range pairs {
			kv, _ := p.([]any)
			if len(kv) != 2 {
				return Value{}, true, dataErrf(nil, nil, "invalid Map envelope entry %v", p)
			}
			k, err := valueFromJSON(kv[0])
			if err != nil {
				return Value{}, true, err
			}
			v, err := valueFromJSON(kv[1])
			if err != nil {
				return Value{}, true, err
			}
			entries = append(entries, MapEntry{Key: k, Value: v})
		}
		return MapValue(entries...), true, nil

	case richTagSet:
		items, _ := raw.([]any)
		vals := make([]Value, 0, len(items))
		for _, it := range items {
			v, err := valueFromJSON(it)
			if err != nil {
				return Value{}, true, err
			}
			vals = append(vals, v)
		}
		return SetValue(vals...), true, nil

	case richTagError:
		errObj, _ := raw.(map[string]any)
		ev := ErrorValue{}
		if msg, ok := errObj["message"].(string); ok {
			ev.Message = msg
		}
		if name, ok := errObj["name"].(string); ok {
			ev.Name = name
		}
		if stack, ok := errObj["stack"].(string); ok {
			ev.Stack = stack
			ev.HasStack = true
		}
		return ErrorLikeValue(ev), true, nil

	default:
		// Forward-compatibility rule (§4.D): unknown __type -> the value
		// of "value" as-is, or the envelope object itself if there is none.
		if hasValue {
			v, err := valueFromJSON(raw)
			return v, true, err
		}
		v, err := valueFromJSON(withoutKey(obj, richTypeKey))
		return v, true, err
	}
}

func withoutKey(obj map[string]any, key string) map[string]any {
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		if k != key {
			out[k] = v
		}
	}
	return out
}

// valueToJSON is valueFromJSON's inverse: it renders a Value into the
// plain Go value tree encoding/json knows how to marshal, wrapping rich
// scalars in their §4.D envelope.
func valueToJSON(v Value) (any, error) {
	switch v.Kind {
	case KindNull, KindUndefined:
		return nil, nil
	case KindBool:
		return v.Bool, nil
	case KindNumber:
		return v.Num, nil
	case KindString, KindBigInt, KindSymbol:
		// BigInt/Symbol have no native JSON representation (§9); their
		// decimal text / description round-trips as a plain string.
		return v.Str, nil
	case KindArray:
		items := v.Items()
		out := make([]any, len(items))
		for i, item := range items {
			jv, err := valueToJSON(item)
			if err != nil {
				return nil, err
			}
			out[i] = jv
		}
		return out, nil
	case KindObject:
		fields := v.Fields()
		out := make(map[string]any, len(fields))
		for _, fl := range fields {
			jv, err := valueToJSON(fl.Value)
			if err != nil {
				return nil, err
			}
			out[fl.Key] = jv
		}
		return out, nil
	case KindSpecialValue:
		return wrapEnvelope(v.Rich)
	default:
		return nil, dataErrf(nil, nil, "valueToJSON: unsupported kind %v", v.Kind)
	}
}

func wrapEnvelope(r *RichValue) (any, error) {
	switch r.RichKind {
	case RichDate:
		return map[string]any{
			richTypeKey:  richTagDate,
			richValueKey: r.Date.UTC().Format(time.RFC3339Nano),
		}, nil

	case RichMap:
		pairs := make([]any, len(r.MapEntries))
		for i, e := range r.MapEntries {
			k, err := valueToJSON(e.Key)
			if err != nil {
				return nil, err
			}
			v, err := valueToJSON(e.Value)
			if err != nil {
				return nil, err
			}
			pairs[i] = []any{k, v}
		}
		return map[string]any{richTypeKey: richTagMap, richValueKey: pairs}, nil

	case RichSet:
		items := make([]any, len(r.SetItems))
		for i, it := range r.SetItems {
			jv, err := valueToJSON(it)
			if err != nil {
				return nil, err
			}
			items[i] = jv
		}
		return map[string]any{richTypeKey: richTagSet, richValueKey: items}, nil

	case RichError:
		e := r.Error
		errObj := map[string]any{"message": e.Message, "name": e.Name}
		if e.HasStack {
			errObj["stack"] = e.Stack
		}
		return map[string]any{richTypeKey: richTagError, richValueKey: errObj}, nil

	default:
		return nil, dataErrf(nil, nil, "wrapEnvelope: unsupported rich kind %v", r.RichKind)
	}
}
