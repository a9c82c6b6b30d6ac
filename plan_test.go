package aientity

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactory_DryRun(t *testing.T) {
	f, stub, err := NewForTesting[Person](`{}`)
	require.NoError(t, err)

	stats, err := f.DryRun(context.Background(), "张三, 30, 工程师")
	require.NoError(t, err)
	assert.Zero(t, stub.Calls())

	assert.Equal(t, "Person", stats.TypeName)
	assert.Equal(t, DefaultModel, stats.Model)
	assert.Equal(t, DefaultEndpoint, stats.Endpoint)
	assert.Equal(t, []string{"name", "age", "occupation"}, stats.Fields)
	assert.Equal(t, []string{"persons", "data", "results"}, stats.WrapperKeys)
	assert.Greater(t, stats.InputTokens, 0)
	assert.Greater(t, stats.OutputTokens, 0)

	var payload chatRequest
	require.NoError(t, json.Unmarshal(stats.Payload, &payload))
	assert.Equal(t, DefaultModel, payload.Model)
	require.Len(t, payload.Messages, 2)
	assert.Equal(t, stats.Instruction, payload.Messages[0].Content)
	assert.Equal(t, "张三, 30, 工程师", payload.Messages[1].Content)
}

func TestFactory_DryRun_EmptyInput(t *testing.T) {
	f, _, err := NewForTesting[Person](`{}`)
	require.NoError(t, err)

	_, err = f.DryRun(context.Background(), " ")
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = f.Explain(context.Background(), "", FormatText)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestFactory_Explain_Text(t *testing.T) {
	f, stub, err := NewForTesting[Person](`{}`)
	require.NoError(t, err)

	out, err := f.Explain(context.Background(), "张三", FormatText)
	require.NoError(t, err)
	assert.Zero(t, stub.Calls())

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "Extraction Plan (estimated)", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], `Extraction "Person"`))
	assert.True(t, strings.HasPrefix(lines[2], "  ├─ PromptBuild"))
	assert.Contains(t, lines[3], "ModelCall")
	assert.Contains(t, lines[3], "model="+DefaultModel)
	assert.Contains(t, lines[4], `"wrappers=persons,data,results"`)
	assert.True(t, strings.HasPrefix(lines[5], "  └─ Deserialize"))
}

func TestFactory_Explain_JSON(t *testing.T) {
	f, _, err := NewForTesting[Person](`{}`)
	require.NoError(t, err)

	out, err := f.Explain(context.Background(), "张三", FormatJSON)
	require.NoError(t, err)

	var plan PlanNode
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	assert.Equal(t, ExtractionType, plan.Type)
	require.Len(t, plan.Children, 4)
	assert.Equal(t, []PlanNodeType{PromptBuildType, ModelCallType, NormalizeType, DeserializeType}, []PlanNodeType{
		plan.Children[0].Type, plan.Children[1].Type, plan.Children[2].Type, plan.Children[3].Type,
	})
	assert.Equal(t, DefaultModel, plan.Children[1].Model)
}

func TestEstimateTokensFromText(t *testing.T) {
	assert.Equal(t, 0, EstimateTokensFromText(""))
	assert.Equal(t, 1, EstimateTokensFromText("abc"))
	assert.Equal(t, 1, EstimateTokensFromText("abcd"))
	assert.Equal(t, 2, EstimateTokensFromText("abcde"))
}

func TestEstimateOutputTokens(t *testing.T) {
	str := estimateOutputTokens([]FieldSpec{{Name: "name", Type: TypeString}})
	flag := estimateOutputTokens([]FieldSpec{{Name: "name", Type: TypeBool}})
	assert.Greater(t, str, flag)
	assert.Equal(t, 2, estimateOutputTokens(nil))
}
