package tracks

import (
	"errors"
	"testing"

	"github.com/chenBenjamin97/football-analyzer/pkg/geometry"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var vocabulary = map[int]string{0: "ball", 1: "goalkeeper", 2: "player", 3: "referee"}

//fakeDetector serves pre recorded frames and remembers every batch it was asked for
type fakeDetector struct {
	frames  []FrameDetections
	batches [][2]int
	err     error
	short   bool
}

func (d *fakeDetector) Detect(start, count int) ([]FrameDetections, error) {
	d.batches = append(d.batches, [2]int{start, count})
	if d.err != nil {
		return nil, d.err
	}
	if d.short {
		count--
	}
	return d.frames[start : start+count], nil
}

//fakeTracker keeps the track ids already set on the detections
type fakeTracker struct {
	seen [][]Detection
	err  error
}

func (tr *fakeTracker) Update(detections []Detection) ([]Detection, error) {
	if tr.err != nil {
		return nil, tr.err
	}
	tr.seen = append(tr.seen, detections)
	return detections, nil
}

type countingRecorder struct {
	batches int
	lookups []string
}

func (r *countingRecorder) ObserveBatch(int)              { r.batches++ }
func (r *countingRecorder) ObserveCacheLookup(res string) { r.lookups = append(r.lookups, res) }

func quietLogger() logrus.FieldLogger {
	l, _ := test.NewNullLogger()
	return l
}

func emptyFrames(n int) []FrameDetections {
	frames := make([]FrameDetections, n)
	for i := range frames {
		frames[i] = FrameDetections{Names: vocabulary}
	}
	return frames
}

func TestBuildMapsClassesIntoStore(t *testing.T) {
	frames := emptyFrames(2)
	frames[0].Detections = []Detection{
		{Box: geometry.Box(0, 0, 10, 20), ClassID: 2, TrackID: 5, Confidence: 0.9},
		{Box: geometry.Box(30, 0, 40, 20), ClassID: 3, TrackID: 8, Confidence: 0.8},
		{Box: geometry.Box(50, 50, 52, 52), ClassID: 0, Confidence: 0.4},
	}

	store, err := NewBuilder(&fakeDetector{frames: frames}, &fakeTracker{}, WithLogger(quietLogger())).Build(2)
	require.NoError(t, err)

	require.NoError(t, store.Validate(2))
	assert.Equal(t, geometry.Box(0, 0, 10, 20), store.Players[0][5].Box)
	assert.Equal(t, geometry.Box(30, 0, 40, 20), store.Referees[0][8].Box)
	assert.Equal(t, geometry.Box(50, 50, 52, 52), store.Ball[0].Box)

	assert.Empty(t, store.Players[1])
	assert.NotNil(t, store.Players[1])
	assert.Empty(t, store.Referees[1])
	assert.Nil(t, store.Ball[1])
}

func TestBuildStoresGoalkeepersAsPlayers(t *testing.T) {
	frames := emptyFrames(1)
	frames[0].Detections = []Detection{
		{Box: geometry.Box(0, 0, 10, 20), ClassID: 1, TrackID: 3, Confidence: 0.7},
	}
	tracker := &fakeTracker{}

	store, err := NewBuilder(&fakeDetector{frames: frames}, tracker, WithLogger(quietLogger())).Build(1)
	require.NoError(t, err)

	require.Contains(t, store.Players[0], 3)
	assert.Empty(t, store.Referees[0])
	//the tracker already sees the player class id
	require.Len(t, tracker.seen, 1)
	assert.Equal(t, 2, tracker.seen[0][0].ClassID)
	//the detector's own batch is left alone
	assert.Equal(t, 1, frames[0].Detections[0].ClassID)
}

func TestBuildKeepsHighestConfidenceBall(t *testing.T) {
	frames := emptyFrames(1)
	frames[0].Detections = []Detection{
		{Box: geometry.Box(0, 0, 2, 2), ClassID: 0, Confidence: 0.3},
		{Box: geometry.Box(10, 10, 12, 12), ClassID: 0, Confidence: 0.6},
		{Box: geometry.Box(20, 20, 22, 22), ClassID: 0, Confidence: 0.6},
		{Box: geometry.Box(30, 30, 32, 32), ClassID: 0, Confidence: 0.1},
	}

	store, err := NewBuilder(&fakeDetector{frames: frames}, &fakeTracker{}, WithLogger(quietLogger())).Build(1)
	require.NoError(t, err)

	assert.Equal(t, geometry.Box(10, 10, 12, 12), store.Ball[0].Box)
}

func TestBuildRequestsFixedSizeBatches(t *testing.T) {
	det := &fakeDetector{frames: emptyFrames(45)}
	rec := &countingRecorder{}

	store, err := NewBuilder(det, &fakeTracker{}, WithLogger(quietLogger()), WithRecorder(rec)).Build(45)
	require.NoError(t, err)

	assert.Equal(t, [][2]int{{0, 20}, {20, 20}, {40, 5}}, det.batches)
	assert.Equal(t, 3, rec.batches)
	assert.Equal(t, 45, store.Len())
}

func TestBuildFailsOnShortBatch(t *testing.T) {
	det := &fakeDetector{frames: emptyFrames(5), short: true}

	_, err := NewBuilder(det, &fakeTracker{}, WithLogger(quietLogger())).Build(5)
	assert.ErrorContains(t, err, "detector returned 4 frames")
}

func TestBuildPropagatesCollaboratorErrors(t *testing.T) {
	boom := errors.New("boom")

	_, err := NewBuilder(&fakeDetector{err: boom}, &fakeTracker{}, WithLogger(quietLogger())).Build(3)
	assert.ErrorIs(t, err, boom)

	_, err = NewBuilder(&fakeDetector{frames: emptyFrames(3)}, &fakeTracker{err: boom}, WithLogger(quietLogger())).Build(3)
	assert.ErrorIs(t, err, boom)
}

func TestBuildWithoutPlayerVocabulary(t *testing.T) {
	frames := []FrameDetections{{
		Names:      map[int]string{0: "ball", 1: "goalkeeper"},
		Detections: []Detection{{Box: geometry.Box(0, 0, 10, 20), ClassID: 1, TrackID: 3}},
	}}

	store, err := NewBuilder(&fakeDetector{frames: frames}, &fakeTracker{}, WithLogger(quietLogger())).Build(1)
	require.NoError(t, err)
	assert.Empty(t, store.Players[0])
}
