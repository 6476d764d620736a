package engine

import (
	"encoding/json"
	"io"
	"strconv"
)

// Kind represents token kinds produced by a strict JSON tokenizer.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// Token is a single JSON token with the input offset just past it.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Offset int64
}

// TokenSource is the minimal tokenizer contract required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// NumberMode dictates how numbers are materialized in decoded values.
type NumberMode int

const (
	NumberFloat64    NumberMode = iota // float64, like encoding/json into any.
	NumberJSONNumber                   // json.Number, preserving the literal text.
)

// ConvertNumber materializes a numeric literal according to mode.
func ConvertNumber(text string, mode NumberMode) (any, error) {
	if mode == NumberJSONNumber {
		return json.Number(text), nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// DecodeValue builds a single value from src. Objects become map[string]any,
// arrays []any (never nil).
func DecodeValue(src TokenSource, mode NumberMode) (any, error) {
	tok, err := src.NextToken()
	if err != nil {
		return nil, err
	}
	return decodeValue(src, tok, mode)
}

func decodeValue(src TokenSource, tok Token, mode NumberMode) (any, error) {
	switch tok.Kind {
	case KindBeginObject:
		return decodeObject(src, mode)
	case KindBeginArray:
		return decodeArray(src, mode)
	case KindString:
		return tok.String, nil
	case KindNumber:
		return ConvertNumber(tok.Number, mode)
	case KindBool:
		return tok.Bool, nil
	case KindNull:
		return nil, nil
	default:
		return nil, io.ErrUnexpectedEOF
	}
}

func decodeObject(src TokenSource, mode NumberMode) (any, error) {
	m := make(map[string]any)
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndObject {
			return m, nil
		}
		if tok.Kind != KindKey {
			return nil, io.ErrUnexpectedEOF
		}
		vt, err := src.NextToken()
		if err != nil {
			return nil, err
		}
		v, err := decodeValue(src, vt, mode)
		if err != nil {
			return nil, err
		}
		m[tok.String] = v
	}
}

func decodeArray(src TokenSource, mode NumberMode) (any, error) {
	arr := []any{}
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndArray {
			return arr, nil
		}
		v, err := decodeValue(src, tok, mode)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}
