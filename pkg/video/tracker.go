package video

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/chenBenjamin97/football-analyzer/pkg/tracks"
	"github.com/sirupsen/logrus"
)

//maxLineSize bounds a single line printed by the python processes
const maxLineSize = 4 << 20

//ProcessDetector runs the python detector script once per batch of frames.
//The script reads the frames from the video itself and prints, for each frame, a "Frame #: n" line followed by one '{"Names":...}' line
//and one '{"Class":...}' line per object. The output ends with an "EOF" line.
type ProcessDetector struct {
	Python     string
	Script     string
	Model      string
	Video      string
	Confidence float64
	Log        logrus.FieldLogger
}

//Detect implements tracks.Detector
func (d *ProcessDetector) Detect(start, count int) ([]tracks.FrameDetections, error) {
	cmd := exec.Command(d.Python, d.Script,
		"--model", d.Model,
		"--video", d.Video,
		"--start", strconv.Itoa(start),
		"--count", strconv.Itoa(count),
		"--conf", strconv.FormatFloat(d.Confidence, 'f', -1, 64),
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ProcessDetector: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ProcessDetector: starting '%s': %w", d.Script, err)
	}

	frames, parseErr := parseDetections(stdout, d.logger())
	//drain whatever is left so the process can exit
	_, _ = io.Copy(io.Discard, stdout)

	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("ProcessDetector: waiting python's process: %w", err)
	}
	if parseErr != nil {
		return nil, parseErr
	}

	return frames, nil
}

func (d *ProcessDetector) logger() logrus.FieldLogger {
	if d.Log == nil {
		return logrus.StandardLogger()
	}
	return d.Log
}

//parseDetections reads the detector's output format until the "EOF" line
func parseDetections(r io.Reader, log logrus.FieldLogger) ([]tracks.FrameDetections, error) {
	frames := make([]tracks.FrameDetections, 0)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch {
		case strings.HasPrefix(line, "Frame #:"):
			frames = append(frames, tracks.FrameDetections{Names: map[int]string{}})

		case line == "EOF":
			return frames, nil

		case strings.Contains(line, "FPS: "): //this is a log print, skip it

		case strings.HasPrefix(line, `{"Names":`):
			if len(frames) == 0 {
				return nil, errors.New("parseDetections: vocabulary printed before any frame")
			}
			v := frameVocabulary{}
			if err := json.Unmarshal([]byte(line), &v); err != nil {
				return nil, fmt.Errorf("parseDetections: bad vocabulary line: %w", err)
			}
			frames[len(frames)-1].Names = v.Names

		case strings.HasPrefix(line, `{"Class":`):
			if len(frames) == 0 {
				return nil, errors.New("parseDetections: object printed before any frame")
			}
			obj := objectBoundingBox{}
			if err := json.Unmarshal([]byte(line), &obj); err != nil {
				//a single broken object line does not invalidate the frame
				log.WithError(err).WithField("frame", len(frames)-1).Warn("Skipping unreadable detection")
				continue
			}
			last := &frames[len(frames)-1]
			last.Detections = append(last.Detections, obj.detection())
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("parseDetections: %w", err)
	}
	return nil, errors.New("parseDetections: detector output ended without EOF")
}

//ProcessTracker talks to a long running python tracker: for every frame one JSON array of boxes is written to its standard input
//and one JSON array of the same boxes carrying an "ID" is read back from its standard output.
type ProcessTracker struct {
	cmd   *exec.Cmd
	in    io.WriteCloser
	lines *bufio.Scanner
}

//StartProcessTracker launches the tracker script
func StartProcessTracker(python, script string) (*ProcessTracker, error) {
	cmd := exec.Command(python, script)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("StartProcessTracker: getting python's standard input: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("StartProcessTracker: getting python's standard output: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("StartProcessTracker: executing '%s': %w", script, err)
	}

	t := newLineTracker(stdin, stdout)
	t.cmd = cmd
	return t, nil
}

func newLineTracker(w io.WriteCloser, r io.Reader) *ProcessTracker {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &ProcessTracker{in: w, lines: scanner}
}

//Update implements tracks.Tracker
func (t *ProcessTracker) Update(detections []tracks.Detection) ([]tracks.Detection, error) {
	boxes := make([]objectBoundingBox, len(detections))
	for i, d := range detections {
		boxes[i] = newObjectBoundingBox(d)
		boxes[i].ID = 0
	}

	payload, err := json.Marshal(boxes)
	if err != nil {
		return nil, err
	}
	if _, err := t.in.Write(append(payload, '\n')); err != nil {
		return nil, fmt.Errorf("ProcessTracker: writing frame: %w", err)
	}

	if !t.lines.Scan() {
		if err := t.lines.Err(); err != nil {
			return nil, fmt.Errorf("ProcessTracker: reading frame: %w", err)
		}
		return nil, errors.New("ProcessTracker: tracker closed its output")
	}

	tracked := make([]objectBoundingBox, 0)
	if err := json.Unmarshal(t.lines.Bytes(), &tracked); err != nil {
		return nil, fmt.Errorf("ProcessTracker: bad tracker line: %w", err)
	}

	res := make([]tracks.Detection, len(tracked))
	for i, o := range tracked {
		res[i] = o.detection()
	}
	return res, nil
}

//Close ends the tracker process
func (t *ProcessTracker) Close() error {
	err := t.in.Close()
	if t.cmd != nil {
		if waitErr := t.cmd.Wait(); waitErr != nil && err == nil {
			err = waitErr
		}
	}
	return err
}
