package util

import (
	"github.com/okello/mara/storage/page"
	"github.com/vmihailenco/msgpack"
)

// ToPageData marshals obj into a page-sized payload.
func ToPageData[T any](obj T) ([]byte, error) {
	res := make([]byte, page.PageSize)

	data, err := msgpack.Marshal(obj)
	if err != nil {
		return nil, err
	}
	copy(res, data)

	return res, nil
}

// FromPageData decodes a payload produced by ToPageData.
func FromPageData[T any](data []byte) (T, error) {
	var res T

	if err := msgpack.Unmarshal(data, &res); err != nil {
		return res, err
	}

	return res, nil
}
