package testutil

import (
	"encoding/json"
	"io"
	"net/http"
)

func decodeJSON(r *http.Request, out any) error {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
