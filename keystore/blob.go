package keystore

import (
	"encoding/base64"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// The persisted form is a JSON array of [kind, base64(key), base64(value)]
// triples. The layout is a wire contract shared with earlier firmware
// generations; do not change it.

func encodeSecrets(secrets []Secret) ([]byte, error) {
	entries := make([][]interface{}, 0, len(secrets))
	for _, s := range secrets {
		entries = append(entries, []interface{}{
			s.Kind,
			base64.StdEncoding.EncodeToString(s.Key),
			base64.StdEncoding.EncodeToString(s.Value),
		})
	}
	return jsoniter.Marshal(entries)
}

func decodeSecrets(data []byte) ([]Secret, error) {
	var entries [][]interface{}
	if err := jsoniter.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrap(err, "unmarshal secret blob")
	}

	out := make([]Secret, 0, len(entries))
	for _, e := range entries {
		if len(e) != 3 {
			return nil, errors.Errorf("secret entry has %d fields, want 3", len(e))
		}
		kind, ok := e[0].(float64)
		if !ok {
			return nil, errors.New("secret entry kind is not a number")
		}
		ks, ok := e[1].(string)
		if !ok {
			return nil, errors.New("secret entry key is not a string")
		}
		vs, ok := e[2].(string)
		if !ok {
			return nil, errors.New("secret entry value is not a string")
		}
		key, err := base64.StdEncoding.DecodeString(ks)
		if err != nil {
			return nil, errors.Wrap(err, "decode secret key")
		}
		value, err := base64.StdEncoding.DecodeString(vs)
		if err != nil {
			return nil, errors.Wrap(err, "decode secret value")
		}
		out = append(out, Secret{Kind: int(kind), Key: key, Value: value})
	}
	return out, nil
}
