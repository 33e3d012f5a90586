package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAskParamsValidate(t *testing.T) {
	params := &AskParams{Question: "What was the accuracy?", TopK: 5}
	assert.Nil(t, params.Validate())
}

func TestAskParamsRequireQuestion(t *testing.T) {
	params := &AskParams{}
	errs := params.Validate()
	assert.Contains(t, errs, "Question")
}

func TestAskParamsBoundTopK(t *testing.T) {
	params := &AskParams{Question: "q", TopK: 50}
	errs := params.Validate()
	assert.Contains(t, errs, "TopK")
}
