package foreign

import (
	"hilal/internal/object"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

func fnStringTrim(ctx *object.CallContext, args ...object.Object) (object.Object, error) {
	s, err := unpackString(args[0], "trim")
	if err != nil {
		return nil, err
	}
	return &object.String{Value: strings.TrimFunc(s, unicode.IsSpace)}, nil
}

// fnStringIndexOf returns the rune index of the first match, or -1.
func fnStringIndexOf(ctx *object.CallContext, args ...object.Object) (object.Object, error) {
	hay, err := unpackString(args[0], "index_of")
	if err != nil {
		return nil, err
	}
	needle, err := unpackString(args[1], "index_of")
	if err != nil {
		return nil, err
	}

	byteIdx := strings.Index(hay, needle)
	if byteIdx < 0 {
		return &object.Number{Value: -1}, nil
	}
	return &object.Number{Value: float64(utf8.RuneCountInString(hay[:byteIdx]))}, nil
}

func fnStringToUpper(ctx *object.CallContext, args ...object.Object) (object.Object, error) {
	s, err := unpackString(args[0], "upper")
	if err != nil {
		return nil, err
	}
	return &object.String{Value: strings.ToUpper(s)}, nil
}

func fnStringToLower(ctx *object.CallContext, args ...object.Object) (object.Object, error) {
	s, err := unpackString(args[0], "lower")
	if err != nil {
		return nil, err
	}
	return &object.String{Value: strings.ToLower(s)}, nil
}

func fnStringMatches(ctx *object.CallContext, args ...object.Object) (object.Object, error) {
	s, err := unpackString(args[0], "matches")
	if err != nil {
		return nil, err
	}
	pattern, err := unpackString(args[1], "matches")
	if err != nil {
		return nil, err
	}

	matched, err := regexp.MatchString(pattern, s)
	if err != nil {
		return nil, err
	}
	return boolToNumber(matched), nil
}
