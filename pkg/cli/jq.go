package cli

import (
	"encoding/json"
	"fmt"

	"github.com/itchyny/gojq"
)

// ApplyJQ runs a jq expression over result and returns every value it
// produces. Typed results go through a JSON round trip first since
// gojq operates on generic values.
func ApplyJQ(expr string, result any) ([]any, error) {
	query, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression %q: %w", expr, err)
	}
	input, err := toJSONValue(result)
	if err != nil {
		return nil, err
	}

	var out []any
	iter := query.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			return nil, fmt.Errorf("jq error: %w", err)
		}
		out = append(out, v)
	}
	return out, nil
}

// OutputJQ applies expr to result and writes each produced value on
// its own line. Strings print bare, everything else as compact JSON.
func OutputJQ(result any, expr string, opts OutputOptions) error {
	values, err := ApplyJQ(expr, result)
	if err != nil {
		return err
	}

	w, closer, err := outputWriter(opts)
	if err != nil {
		return err
	}
	defer closer()

	for _, v := range values {
		switch s := v.(type) {
		case string:
			fmt.Fprintln(w, s)
		default:
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, string(data))
		}
	}
	return nil
}

func toJSONValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
