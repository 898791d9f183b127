package database

import (
	"github.com/Nystya/atomic-kv/domain"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// EncodeValue converts value into the string value domain. Strings are kept
// verbatim, byte slices are converted, everything else is JSON encoded.
func EncodeValue(key string, value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", &domain.InvalidValueError{Key: key, Err: errors.New("nil value")}
	case string:
		return v, nil
	case []byte:
		if v == nil {
			return "", &domain.InvalidValueError{Key: key, Err: errors.New("nil value")}
		}
		return string(v), nil
	}

	b, err := json.Marshal(value)
	if err != nil {
		return "", &domain.InvalidValueError{Key: key, Err: err}
	}

	return string(b), nil
}
