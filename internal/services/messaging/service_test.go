package messaging

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEventStopMessageMentionsLostSegments(t *testing.T) {
	svc, err := NewService(&ServiceConfig{})
	require.NoError(t, err)

	output, err := svc.GetEventStopMessage(context.Background(), &GetEventStopMessageInput{
		ParticipantCount: 4,
		LostSegments:     2,
	})
	require.NoError(t, err)
	assert.Contains(t, output.Message, "2 stays")
	assert.Equal(t, ToneFunny, output.Tone)
}

func TestGetPayrollSummaryMessageMentionsUnassigned(t *testing.T) {
	svc, err := NewService(&ServiceConfig{})
	require.NoError(t, err)

	output, err := svc.GetPayrollSummaryMessage(context.Background(), &GetPayrollSummaryMessageInput{
		TotalValue:      1000,
		MemberCount:     3,
		UnassignedValue: 250,
	})
	require.NoError(t, err)
	assert.Contains(t, output.Message, "250 aUEC")
}

func TestGetErrorMessageFallsBackOnUnknownType(t *testing.T) {
	svc, err := NewService(&ServiceConfig{})
	require.NoError(t, err)

	output, err := svc.GetErrorMessage(context.Background(), &GetErrorMessageInput{
		ErrorType:  "something_new",
		MemberName: "Arden",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, output.Title)
	assert.False(t, strings.Contains(output.Message, "%s"))
}
