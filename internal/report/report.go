package report

import (
	"encoding/json"
	"os"

	"example.com/chandb/internal/diag"
)

func SaveCheckJSON(rep diag.Report, out string) error {
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(out, b, 0644)
}

func LoadCheckJSON(path string) (diag.Report, error) {
	var rep diag.Report
	b, err := os.ReadFile(path)
	if err != nil {
		return rep, err
	}
	err = json.Unmarshal(b, &rep)
	return rep, err
}
