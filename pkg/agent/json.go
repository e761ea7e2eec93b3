package agent

import (
	"encoding/json"

	"github.com/kaptinlin/jsonrepair"
)

// unmarshalArgs unmarshals operation arguments into v, attempting to
// repair malformed JSON first. Language models routinely emit arguments
// with trailing commas, single quotes, or unquoted keys; a syntax error
// triggers one repair pass before retrying.
func unmarshalArgs(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	err := json.Unmarshal(data, v)
	if err == nil {
		return nil
	}
	if _, ok := err.(*json.SyntaxError); ok {
		fixed, err := jsonrepair.JSONRepair(string(data))
		if err != nil {
			return err
		}
		return json.Unmarshal([]byte(fixed), v)
	}
	return err
}
