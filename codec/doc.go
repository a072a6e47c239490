// Package codec converts configuration values between their persisted string form and
// the decoded runtime values held in caches.
//
// # Overview
//
// Configuration rows always store their value as a string. The declared ValueType of a
// row decides how that string is decoded:
//
//   - number: parsed as a float64
//   - boolean: true only for "true" or "1"
//   - json, array: decoded with encoding/json
//   - password, string, enum: returned unchanged
//
// Decoding never fails from the caller's point of view. ParseValue returns the raw string
// when a value cannot be decoded for its type; DecodeValue does the same but also reports
// the error so callers can log it.
//
// # Namespaces and trees
//
// Keys are dot-delimited (storage.cos.secretId). ExtractCategory returns the first segment,
// BuildNestedConfig turns a flat list of pairs into nested maps and FlattenConfig walks the
// nested form back into pairs:
//
//	pairs := []codec.Pair{{Key: "a.b", Value: 1.0}, {Key: "a.c", Value: 2.0}, {Key: "d", Value: 3.0}}
//	tree := codec.BuildNestedConfig(pairs) // map[a:map[b:1 c:2] d:3]
//
// BuildTree links records into a forest by parent id in a single pass over the input. It is
// used for dictionary trees but works for any node type.
package codec
