package video

import (
	"bytes"
	"strings"
	"testing"

	"github.com/chenBenjamin97/football-analyzer/pkg/geometry"
	"github.com/chenBenjamin97/football-analyzer/pkg/tracks"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const detectorOutput = `loading weights
Frame #: 1
{"Names": {"0": "ball", "1": "goalkeeper", "2": "player", "3": "referee"}}
{"Class": 2, "Confidence": 0.91, "Xmin": 10, "Ymin": 20, "Xmax": 40, "Ymax": 90}
{"Class": 0, "Confidence": 0.35, "Xmin": 50.5, "Ymin": 60, "Xmax": 55.5, "Ymax": 65}
FPS: 12.3
Frame #: 2
{"Names": {"0": "ball", "1": "goalkeeper", "2": "player", "3": "referee"}}
{"Class": broken
Frame #: 3
{"Names": {"0": "ball"}}
EOF
`

func TestParseDetections(t *testing.T) {
	logger, hook := test.NewNullLogger()

	frames, err := parseDetections(strings.NewReader(detectorOutput), logger)
	require.NoError(t, err)

	require.Len(t, frames, 3)
	assert.Equal(t, "goalkeeper", frames[0].Names[1])
	require.Len(t, frames[0].Detections, 2)
	assert.Equal(t, tracks.Detection{Box: geometry.Box(10, 20, 40, 90), ClassID: 2, Confidence: 0.91}, frames[0].Detections[0])
	assert.Equal(t, geometry.Box(50.5, 60, 55.5, 65), frames[0].Detections[1].Box)
	assert.Empty(t, frames[1].Detections)
	assert.Equal(t, map[int]string{0: "ball"}, frames[2].Names)
	assert.Len(t, hook.AllEntries(), 1)
}

func TestParseDetectionsWithoutEOF(t *testing.T) {
	logger, _ := test.NewNullLogger()

	_, err := parseDetections(strings.NewReader("Frame #: 1\n"), logger)
	assert.ErrorContains(t, err, "without EOF")
}

func TestParseDetectionsObjectBeforeFrame(t *testing.T) {
	logger, _ := test.NewNullLogger()

	_, err := parseDetections(strings.NewReader(`{"Class": 1, "Xmin": 1}`+"\nEOF\n"), logger)
	assert.Error(t, err)
}

type nopWriteCloser struct{ *bytes.Buffer }

func (nopWriteCloser) Close() error { return nil }

func TestProcessTrackerExchangesOneLinePerFrame(t *testing.T) {
	sent := nopWriteCloser{&bytes.Buffer{}}
	replies := strings.NewReader(
		`[{"ID": 7, "Class": 2, "Confidence": 0.9, "Xmin": 10, "Ymin": 20, "Xmax": 40, "Ymax": 90}]` + "\n" +
			`[]` + "\n")
	tr := newLineTracker(sent, replies)

	got, err := tr.Update([]tracks.Detection{{Box: geometry.Box(10, 20, 40, 90), ClassID: 2, Confidence: 0.9, TrackID: 99}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 7, got[0].TrackID)
	assert.Equal(t, geometry.Box(10, 20, 40, 90), got[0].Box)
	assert.Equal(t, `[{"Class":2,"Confidence":0.9,"Xmin":10,"Ymin":20,"Xmax":40,"Ymax":90}]`+"\n", sent.String())

	got, err = tr.Update(nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = tr.Update(nil)
	assert.ErrorContains(t, err, "closed its output")
	assert.NoError(t, tr.Close())
}
