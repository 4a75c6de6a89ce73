package courtroom_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ParthRana1023/AI-Courtroom-sub001/courtroom"
	"github.com/ParthRana1023/AI-Courtroom-sub001/models"
)

func arg(typ, content, branch string, ts int64) models.Argument {
	return models.Argument{
		Type:      typ,
		Content:   content,
		Branch:    branch,
		Timestamp: primitive.DateTime(ts),
	}
}

func TestMergeTranscriptOrdersByTimestamp(t *testing.T) {
	plaintiff := []models.Argument{
		arg(models.ArgumentTypeOpening, "opening", models.RolePlaintiff, 1000),
		arg(models.ArgumentTypeCounter, "counter", models.RolePlaintiff, 3000),
	}
	defendant := []models.Argument{
		arg(models.ArgumentTypeUser, "rebuttal", models.RoleDefendant, 2000),
	}

	merged := courtroom.MergeTranscript(plaintiff, defendant)

	assert.Len(t, merged, 3)
	assert.Equal(t, "opening", merged[0].Content)
	assert.Equal(t, "rebuttal", merged[1].Content)
	assert.Equal(t, "counter", merged[2].Content)
}

func TestMergeTranscriptLengthIsSumOfInputs(t *testing.T) {
	var plaintiff, defendant []models.Argument
	for i := int64(0); i < 7; i++ {
		plaintiff = append(plaintiff, arg(models.ArgumentTypeUser, "p", models.RolePlaintiff, i*100))
	}
	for i := int64(0); i < 4; i++ {
		defendant = append(defendant, arg(models.ArgumentTypeCounter, "d", models.RoleDefendant, i*100+50))
	}

	merged := courtroom.MergeTranscript(plaintiff, defendant)
	assert.Len(t, merged, len(plaintiff)+len(defendant))
}

func TestMergeTranscriptStableOnEqualTimestamps(t *testing.T) {
	plaintiff := []models.Argument{
		arg(models.ArgumentTypeUser, "p1", models.RolePlaintiff, 1000),
		arg(models.ArgumentTypeUser, "p2", models.RolePlaintiff, 1000),
	}
	defendant := []models.Argument{
		arg(models.ArgumentTypeCounter, "d1", models.RoleDefendant, 1000),
		arg(models.ArgumentTypeCounter, "d2", models.RoleDefendant, 1000),
	}

	merged := courtroom.MergeTranscript(plaintiff, defendant)

	// relative order within each branch survives the tie
	assert.Equal(t, []string{"p1", "p2", "d1", "d2"}, contents(merged))
}

func TestMergeTranscriptOpeningThenUser(t *testing.T) {
	t0 := int64(5000)
	plaintiff := []models.Argument{arg(models.ArgumentTypeOpening, "opening", models.RolePlaintiff, t0)}
	defendant := []models.Argument{arg(models.ArgumentTypeUser, "user", models.RoleDefendant, t0+1)}

	merged := courtroom.MergeTranscript(plaintiff, defendant)

	assert.Equal(t, []string{"opening", "user"}, contents(merged))
}

func TestMergeTranscriptEmptyBranches(t *testing.T) {
	assert.Empty(t, courtroom.MergeTranscript(nil, nil))

	solo := []models.Argument{arg(models.ArgumentTypeOpening, "only", models.RolePlaintiff, 1)}
	assert.Len(t, courtroom.MergeTranscript(solo, nil), 1)
	assert.Len(t, courtroom.MergeTranscript(nil, solo), 1)
}

func contents(args []models.Argument) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = a.Content
	}
	return out
}
