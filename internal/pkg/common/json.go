package common

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// ParseJSONBytes 解析單一 JSON 文件，數字保留為 json.Number，後面不能再接其他資料
func ParseJSONBytes(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if err := dec.Decode(v); err != nil {
		return err
	}

	if _, err := dec.Token(); err != io.EOF {
		if err != nil {
			return err
		}
		return errors.New("unexpected extra JSON data")
	}
	return nil
}
