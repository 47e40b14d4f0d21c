package rag

import (
	"encoding/json"
	"fmt"
	"os"
)

type qaSeedFile struct {
	Questions []struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
	} `json:"questions"`
}

// LoadQASeed reads a curated question/answer seed file. Entries with an empty
// question or answer are dropped.
func LoadQASeed(path string) (questions, answers []string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("rag: read seed file: %w", err)
	}
	var file qaSeedFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("rag: parse seed file: %w", err)
	}
	for _, q := range file.Questions {
		if q.Question == "" || q.Answer == "" {
			continue
		}
		questions = append(questions, q.Question)
		answers = append(answers, q.Answer)
	}
	return questions, answers, nil
}
