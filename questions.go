package main

import (
	"fmt"

	"github.com/Seednode/squadhealth/games/healthcheck"
	"github.com/spf13/viper"
)

// loadQuestions reads the question list from path, or returns the built-in
// set when path is empty. The file format follows its extension.
func loadQuestions(path string) ([]healthcheck.Question, error) {
	if path == "" {
		return healthcheck.DefaultQuestions(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading questions from %s: %w", path, err)
	}

	var questions []healthcheck.Question
	if err := v.UnmarshalKey("questions", &questions); err != nil {
		return nil, fmt.Errorf("parsing questions from %s: %w", path, err)
	}

	if err := healthcheck.ValidateQuestions(questions); err != nil {
		return nil, fmt.Errorf("invalid questions in %s: %w", path, err)
	}

	return questions, nil
}
