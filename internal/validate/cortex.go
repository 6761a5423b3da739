package validate

import (
	"fmt"
	"strings"
)

// Limits for Cortex service parameters.
const (
	MaxPromptLength   = 10000
	MaxSearchQueryLen = 1000
	MaxFilterLength   = 500
	MaxQuestionLength = 2000
	MaxSearchLimit    = 100
	MaxCompleteTokens = 4000
)

// CompleteParams checks the cortex_complete arguments. Model
// membership is checked separately by the snowflake package so that an
// unsupported model surfaces as its own error kind.
func CompleteParams(prompt string, temperature *float64, maxTokens *int) error {
	if strings.TrimSpace(prompt) == "" {
		return fmt.Errorf("%w: prompt cannot be empty", ErrValidation)
	}
	if len(prompt) > MaxPromptLength {
		return fmt.Errorf("%w: prompt too long (max %d characters)", ErrValidation, MaxPromptLength)
	}

	if temperature != nil && (*temperature < 0.0 || *temperature > 1.0) {
		return fmt.Errorf("%w: temperature must be between 0.0 and 1.0", ErrValidation)
	}

	if maxTokens != nil && (*maxTokens < 1 || *maxTokens > MaxCompleteTokens) {
		return fmt.Errorf("%w: max tokens must be between 1 and %d", ErrValidation, MaxCompleteTokens)
	}

	return nil
}

// SearchParams checks the cortex_search arguments.
func SearchParams(serviceName, query string, limit int, filter string) error {
	if err := Identifier(serviceName, "service name"); err != nil {
		return err
	}

	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("%w: search query cannot be empty", ErrValidation)
	}
	if len(query) > MaxSearchQueryLen {
		return fmt.Errorf("%w: search query too long (max %d characters)", ErrValidation, MaxSearchQueryLen)
	}

	if limit < 1 || limit > MaxSearchLimit {
		return fmt.Errorf("%w: limit must be between 1 and %d", ErrValidation, MaxSearchLimit)
	}

	if len(filter) > MaxFilterLength {
		return fmt.Errorf("%w: filter expression too long (max %d characters)", ErrValidation, MaxFilterLength)
	}

	return nil
}

// AnalystParams checks the cortex_analyst arguments.
func AnalystParams(serviceName, question string) error {
	if err := Identifier(serviceName, "service name"); err != nil {
		return err
	}

	if strings.TrimSpace(question) == "" {
		return fmt.Errorf("%w: question cannot be empty", ErrValidation)
	}
	if len(question) > MaxQuestionLength {
		return fmt.Errorf("%w: question too long (max %d characters)", ErrValidation, MaxQuestionLength)
	}

	return nil
}
