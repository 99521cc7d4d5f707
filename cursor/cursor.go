// Package cursor mints and parses search-after tokens: opaque strings a
// client echoes back to resume a sorted search behind the last hit of the
// previous page.
//
// Tokens are self-describing: they carry the codec name so a token minted
// by one process can be parsed by another configured differently.
package cursor

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/hybridgo/codec"
	"github.com/hupe1980/hybridgo/model"
)

var (
	// ErrInvalidToken is returned when a token cannot be parsed.
	ErrInvalidToken = errors.New("invalid search-after token")

	// ErrUnknownCodec is returned when a token names a codec this build
	// does not know.
	ErrUnknownCodec = errors.New("unknown codec in search-after token")
)

// fieldValue is one sort-field value in its wire form. Kind restores the
// exact Go type on decode; JSON alone would widen everything numeric to
// float64 and break comparator type checks.
type fieldValue struct {
	Kind  string  `json:"kind"`
	Int   int64   `json:"int,omitempty"`
	Float float64 `json:"float,omitempty"`
	Str   string  `json:"str,omitempty"`
}

type envelope struct {
	Doc    int          `json:"doc"`
	Score  float32      `json:"score"`
	Shard  int          `json:"shard"`
	Fields []fieldValue `json:"fields"`
}

// Encode mints a token for the page boundary hit. A nil codec selects the
// default.
func Encode(after model.FieldDoc, c codec.Codec) (string, error) {
	if c == nil {
		c = codec.Default
	}
	env := envelope{
		Doc:    after.Doc,
		Score:  after.Score,
		Shard:  after.ShardIndex,
		Fields: make([]fieldValue, len(after.Fields)),
	}
	for i, v := range after.Fields {
		fv, err := toFieldValue(v)
		if err != nil {
			return "", err
		}
		env.Fields[i] = fv
	}
	payload, err := c.Marshal(env)
	if err != nil {
		return "", err
	}
	return c.Name() + ":" + base64.RawURLEncoding.EncodeToString(payload), nil
}

// Decode parses a token back into the page boundary hit.
func Decode(token string) (model.FieldDoc, error) {
	name, encoded, ok := strings.Cut(token, ":")
	if !ok {
		return model.FieldDoc{}, fmt.Errorf("%w: missing codec prefix", ErrInvalidToken)
	}
	c, ok := codec.ByName(name)
	if !ok {
		return model.FieldDoc{}, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return model.FieldDoc{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	var env envelope
	if err := c.Unmarshal(payload, &env); err != nil {
		return model.FieldDoc{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	after := model.FieldDoc{
		ScoreDoc: model.ScoreDoc{Doc: env.Doc, Score: env.Score, ShardIndex: env.Shard},
		Fields:   make([]any, len(env.Fields)),
	}
	for i, fv := range env.Fields {
		v, err := fromFieldValue(fv)
		if err != nil {
			return model.FieldDoc{}, err
		}
		after.Fields[i] = v
	}
	return after, nil
}

func toFieldValue(v any) (fieldValue, error) {
	switch v := v.(type) {
	case int:
		return fieldValue{Kind: "int", Int: int64(v)}, nil
	case int64:
		return fieldValue{Kind: "int64", Int: v}, nil
	case float32:
		return fieldValue{Kind: "float32", Float: float64(v)}, nil
	case float64:
		return fieldValue{Kind: "float64", Float: v}, nil
	case string:
		return fieldValue{Kind: "string", Str: v}, nil
	default:
		return fieldValue{}, fmt.Errorf("unsupported sort-field value type %T", v)
	}
}

func fromFieldValue(fv fieldValue) (any, error) {
	switch fv.Kind {
	case "int":
		return int(fv.Int), nil
	case "int64":
		return fv.Int, nil
	case "float32":
		return float32(fv.Float), nil
	case "float64":
		return fv.Float, nil
	case "string":
		return fv.Str, nil
	default:
		return nil, fmt.Errorf("%w: unsupported value kind %q", ErrInvalidToken, fv.Kind)
	}
}
