package video

import (
	"errors"
	"fmt"
	"os/exec"

	"gocv.io/x/gocv"
)

//ErrNoFrames is returned when a video could be opened but holds no frame
var ErrNoFrames = errors.New("video has no frames")

//ReadVideo decodes every frame of the video at path. The caller must close the returned frames (see CloseFrames).
func ReadVideo(path string) ([]gocv.Mat, float64, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("ReadVideo: opening '%s': %w", path, err)
	}
	defer capture.Close()

	fps := capture.Get(gocv.VideoCaptureFPS)

	frames := make([]gocv.Mat, 0)
	frameMat := gocv.NewMat()
	defer frameMat.Close()

	for capture.Read(&frameMat) {
		if frameMat.Empty() {
			break
		}
		frames = append(frames, frameMat.Clone())
	}

	if len(frames) == 0 {
		return nil, 0, fmt.Errorf("ReadVideo: '%s': %w", path, ErrNoFrames)
	}

	return frames, fps, nil
}

//SaveVideo writes frames as an XVID (== MPEG-4 codec) '.avi' file at the given frame rate.
//The frame size is taken from the first frame.
func SaveVideo(frames []gocv.Mat, path string, fps float64) error {
	if len(frames) == 0 {
		return fmt.Errorf("SaveVideo: '%s': %w", path, ErrNoFrames)
	}

	writer, err := gocv.VideoWriterFile(path, "XVID", fps, frames[0].Cols(), frames[0].Rows(), true)
	if err != nil {
		return fmt.Errorf("SaveVideo: creating '%s': %w", path, err)
	}
	defer writer.Close()

	for i, frame := range frames {
		if err := writer.Write(frame); err != nil {
			return fmt.Errorf("SaveVideo: writing frame %d to '%s': %w", i, path, err)
		}
	}
	return nil
}

//Convert re-encodes src into dst with ffmpeg, the container is picked from dst's extension. example: ffmpeg -y -i game.avi game.mp4
func Convert(ffmpeg, src, dst string) error {
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}

	out, err := exec.Command(ffmpeg, "-y", "-i", src, dst).CombinedOutput()
	if err != nil {
		return fmt.Errorf("Convert: ffmpeg failed on '%s': %w (%s)", src, err, lastLine(out))
	}
	return nil
}

func lastLine(out []byte) string {
	end := len(out)
	for end > 0 && (out[end-1] == '\n' || out[end-1] == '\r') {
		end--
	}
	start := end
	for start > 0 && out[start-1] != '\n' {
		start--
	}
	return string(out[start:end])
}
