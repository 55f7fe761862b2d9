package xref

import (
	"errors"
	"fmt"

	"github.com/Rick-Wilson/pdf-handouts/graph"
	"github.com/Rick-Wilson/pdf-handouts/scanner"
)

// parseObject assembles one object from the token stream. It covers the
// subset needed here: trailer dictionaries and cross-reference stream
// dictionaries, so streams themselves are handled by the callers.
func parseObject(s scanner.Scanner) (graph.Object, error) {
	tok, err := s.Next()
	if err != nil {
		return nil, err
	}
	return parseFromToken(s, tok)
}

func parseFromToken(s scanner.Scanner, tok scanner.Token) (graph.Object, error) {
	switch tok.Type {
	case scanner.TokenNull:
		return graph.Null{}, nil
	case scanner.TokenBoolean:
		return graph.Boolean{V: tok.Bool}, nil
	case scanner.TokenNumber:
		if tok.IsInt {
			return graph.Integer{V: tok.Int}, nil
		}
		return graph.Real{V: tok.Float}, nil
	case scanner.TokenString:
		return graph.String{B: tok.Bytes, Hex: tok.Hex}, nil
	case scanner.TokenName:
		return graph.Name{V: tok.Str}, nil
	case scanner.TokenRef:
		return graph.Reference{R: graph.Ref{Num: int(tok.Int), Gen: int(tok.Gen)}}, nil
	case scanner.TokenArrayOpen:
		return parseArray(s)
	case scanner.TokenDictOpen:
		return parseDict(s)
	default:
		return nil, fmt.Errorf("unexpected token %q at offset %d", tok.Str, tok.Pos)
	}
}

func parseArray(s scanner.Scanner) (*graph.Array, error) {
	arr := graph.NewArray()
	for {
		tok, err := s.Next()
		if err != nil {
			return nil, err
		}
		if tok.Type == scanner.TokenKeyword && tok.Str == "]" {
			return arr, nil
		}
		item, err := parseFromToken(s, tok)
		if err != nil {
			return nil, err
		}
		arr.Items = append(arr.Items, item)
	}
}

func parseDict(s scanner.Scanner) (*graph.Dict, error) {
	dict := graph.NewDict()
	for {
		tok, err := s.Next()
		if err != nil {
			return nil, err
		}
		if tok.Type == scanner.TokenKeyword && tok.Str == ">>" {
			return dict, nil
		}
		if tok.Type != scanner.TokenName {
			return nil, fmt.Errorf("dictionary key is not a name at offset %d", tok.Pos)
		}
		key := tok.Str
		val, err := parseObject(s)
		if err != nil {
			return nil, err
		}
		dict.Set(key, val)
	}
}

var errNotStream = errors.New("object is not a stream")
