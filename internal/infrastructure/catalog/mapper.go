package catalog

import (
	"fmt"

	"github.com/jibsearch/backend/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ToBSON converts a decoded JSON query or document into BSON types so nested
// operators ($or, $regex, ...) encode as documents and arrays.
func ToBSON(m map[string]interface{}) bson.M {
	out := make(bson.M, len(m))
	for k, v := range m {
		out[k] = toBSONValue(v)
	}
	return out
}

func toBSONValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return ToBSON(val)
	case domain.Filter:
		return ToBSON(val)
	case bson.M:
		return ToBSON(val)
	case []interface{}:
		arr := make(bson.A, len(val))
		for i, item := range val {
			arr[i] = toBSONValue(item)
		}
		return arr
	case []string:
		arr := make(bson.A, len(val))
		for i, item := range val {
			arr[i] = item
		}
		return arr
	default:
		return v
	}
}

// FromBSON converts a stored document into a RawProduct. The document key is
// copied into "id" as a string and "_id" is dropped.
func FromBSON(doc bson.M) domain.RawProduct {
	out := make(domain.RawProduct, len(doc)+1)
	for k, v := range doc {
		if k == "_id" {
			continue
		}
		out[k] = fromBSONValue(v)
	}
	if id, ok := doc["_id"]; ok && id != nil {
		out["id"] = idString(id)
	}
	return out
}

func fromBSONValue(v interface{}) interface{} {
	switch val := v.(type) {
	case bson.M:
		m := make(map[string]interface{}, len(val))
		for k, item := range val {
			m[k] = fromBSONValue(item)
		}
		return m
	case bson.D:
		m := make(map[string]interface{}, len(val))
		for _, e := range val {
			m[e.Key] = fromBSONValue(e.Value)
		}
		return m
	case bson.A:
		arr := make([]interface{}, len(val))
		for i, item := range val {
			arr[i] = fromBSONValue(item)
		}
		return arr
	case primitive.ObjectID:
		return val.Hex()
	case primitive.DateTime:
		return val.Time().UTC()
	default:
		return v
	}
}

func idString(id interface{}) string {
	switch v := id.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
