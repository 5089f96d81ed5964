package foreign

import (
	"crypto/sha256"
	"encoding/hex"
	"hilal/internal/object"
)

func fnCryptoSha256(ctx *object.CallContext, args ...object.Object) (object.Object, error) {
	s, err := unpackString(args[0], "sha256")
	if err != nil {
		return nil, err
	}
	hash := sha256.Sum256([]byte(s))
	return &object.String{Value: hex.EncodeToString(hash[:])}, nil
}
