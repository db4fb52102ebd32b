package handlers

import (
	"encoding/json"
	"io"

	"github.com/labstack/echo/v4"
)

func encodeMetadata(metadata map[string]any) (json.RawMessage, error) {
	raw, err := json.Marshal(metadata)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func readBody(c echo.Context) ([]byte, error) {
	return io.ReadAll(c.Request().Body)
}
