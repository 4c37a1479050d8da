package form

import (
	"encoding/json"

	"github.com/MikhailRaia/shortlink/internal/model"
)

func jsonBody(req *model.ShortenRequest) (string, error) {
	data, err := json.Marshal(req)
	return string(data), err
}
