// Package v1 defines the messages exchanged over the conversion stream.
package v1

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// LocationKind is the kind of storage that holds an object.
type LocationKind string

const (
	LocationMinio LocationKind = "minio"
	LocationLocal LocationKind = "local"
)

// Location addresses an object in the storage.
type Location struct {
	Kind       LocationKind `json:"kind,omitempty"`
	Bucket     string       `json:"bucket"`
	ObjectName string       `json:"object_name"`
}

// InputFrame is a request to convert a raw data frame.
type InputFrame struct {
	FrameId       string    `json:"frame_id"`
	FrameLocation *Location `json:"frame_location"`
}

// ConvertedBlob is the result of a data frame conversion.
type ConvertedBlob struct {
	FrameId           string    `json:"frame_id"`
	FrameLocation     *Location `json:"frame_location"`
	ConvertedLocation *Location `json:"converted_location"`
}

// Marshal
func (f *InputFrame) Marshal() ([]byte, error) {
	return json.Marshal(f)
}

// Unmarshal decodes the frame and makes sure it can be located.
func (f *InputFrame) Unmarshal(data []byte) error {
	if err := json.Unmarshal(data, f); err != nil {
		return err
	}
	if f.FrameId == "" {
		return ErrNoFrameId
	}
	if f.FrameLocation == nil {
		return ErrNoFrameLocation
	}
	return nil
}

// Marshal
func (b *ConvertedBlob) Marshal() ([]byte, error) {
	return json.Marshal(b)
}

// Unmarshal
func (b *ConvertedBlob) Unmarshal(data []byte) error {
	return json.Unmarshal(data, b)
}
