/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: compress.go
Description: Compressed text blobs for persisted fitted state. The names and training
data texts are kept zstd-compressed and expanded only right before a prediction call.
*/

package storage

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Blob is a zstd-compressed text
type Blob []byte

var (
	codecOnce sync.Once
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	codecErr  error
)

// codec lazily builds the shared encoder and decoder; both are safe for
// concurrent EncodeAll/DecodeAll calls
func codec() (*zstd.Encoder, *zstd.Decoder, error) {
	codecOnce.Do(func() {
		encoder, codecErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if codecErr != nil {
			codecErr = fmt.Errorf("create zstd encoder: %w", codecErr)
			return
		}
		decoder, codecErr = zstd.NewReader(nil)
		if codecErr != nil {
			codecErr = fmt.Errorf("create zstd decoder: %w", codecErr)
		}
	})
	return encoder, decoder, codecErr
}

// Compress packs a text
func Compress(text string) (Blob, error) {
	enc, _, err := codec()
	if err != nil {
		return nil, err
	}
	return enc.EncodeAll([]byte(text), nil), nil
}

// Text expands the blob
func (b Blob) Text() (string, error) {
	if len(b) == 0 {
		return "", nil
	}
	_, dec, err := codec()
	if err != nil {
		return "", err
	}
	raw, err := dec.DecodeAll(b, nil)
	if err != nil {
		return "", fmt.Errorf("decompress blob: %w", err)
	}
	return string(raw), nil
}
