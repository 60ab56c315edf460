package tracks

import (
	"errors"
	"fmt"

	"github.com/chenBenjamin97/football-analyzer/pkg/geometry"
	"github.com/chenBenjamin97/football-analyzer/pkg/utils"
	"github.com/sirupsen/logrus"
)

//Detection is one detected object on one frame. TrackID is only meaningful after the tracker annotated it.
type Detection struct {
	Box        geometry.BoundingBox
	ClassID    int
	Confidence float64
	TrackID    int
}

//FrameDetections is the detector output of a single frame together with the vocabulary its class ids refer to
type FrameDetections struct {
	Names      map[int]string
	Detections []Detection
}

//Detector finds objects on count consecutive frames starting at frame start
type Detector interface {
	Detect(start, count int) ([]FrameDetections, error)
}

//Tracker assigns persistent per class track ids to one frame's detections.
//It is called once per frame, in frame order.
type Tracker interface {
	Update(detections []Detection) ([]Detection, error)
}

//BuildRecorder is notified about the builder's progress, metrics.Metrics implements it
type BuildRecorder interface {
	ObserveBatch(frames int)
	ObserveCacheLookup(result string)
}

//Builder turns detector and tracker output into a Store
type Builder struct {
	detector  Detector
	tracker   Tracker
	cache     *Cache
	batchSize int
	log       logrus.FieldLogger
	recorder  BuildRecorder
}

//BuilderOption customizes a Builder
type BuilderOption func(*Builder)

//WithCache makes the builder read and write the given cache
func WithCache(c *Cache) BuilderOption {
	return func(b *Builder) { b.cache = c }
}

//WithLogger sets the logger used for progress reports
func WithLogger(l logrus.FieldLogger) BuilderOption {
	return func(b *Builder) { b.log = l }
}

//WithRecorder sets the recorder notified about batches and cache lookups
func WithRecorder(r BuildRecorder) BuilderOption {
	return func(b *Builder) { b.recorder = r }
}

//WithBatchSize overrides utils.DetectionBatchSize
func WithBatchSize(n int) BuilderOption {
	return func(b *Builder) {
		if n > 0 {
			b.batchSize = n
		}
	}
}

//NewBuilder creates a Builder over the given collaborators
func NewBuilder(detector Detector, tracker Tracker, opts ...BuilderOption) *Builder {
	b := &Builder{
		detector:  detector,
		tracker:   tracker,
		batchSize: utils.DetectionBatchSize,
		log:       logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

//ObjectTracks returns the track store of a video with frames frames.
//When a cache is configured and holds a store matching key, no detection is done. Otherwise the store is computed and, if a cache is configured, saved.
func (b *Builder) ObjectTracks(frames int, key CacheKey) (*Store, error) {
	if b.cache != nil {
		store, err := b.cache.Load(key, frames)
		switch {
		case err == nil:
			b.log.WithField("path", b.cache.Path(key)).Info("Reading tracks from cache")
			b.observeCache("hit")
			return store, nil
		case errors.Is(err, ErrCacheMiss):
			b.observeCache("miss")
		default:
			b.log.WithError(err).Warn("Ignoring unusable track cache, recomputing")
			b.observeCache("stale")
		}
	}

	store, err := b.Build(frames)
	if err != nil {
		return nil, err
	}

	if b.cache != nil {
		b.log.WithField("path", b.cache.Path(key)).Info("Saving tracks to cache")
		if err := b.cache.Save(key, store); err != nil {
			return nil, err
		}
	}

	return store, nil
}

//Build runs detection in batches and tracking frame by frame, without touching any cache
func (b *Builder) Build(frames int) (*Store, error) {
	b.log.WithFields(logrus.Fields{"frames": frames, "batch_size": b.batchSize}).Info("Starting detection")

	store := NewStore(frames)

	for start := 0; start < frames; start += b.batchSize {
		count := b.batchSize
		if start+count > frames {
			count = frames - start
		}

		b.log.WithFields(logrus.Fields{"from": start, "to": start + count}).Debug("Processing batch")
		batch, err := b.detector.Detect(start, count)
		if err != nil {
			return nil, fmt.Errorf("detecting frames %d-%d: %w", start, start+count, err)
		}
		if len(batch) != count {
			return nil, fmt.Errorf("detector returned %d frames for a batch of %d starting at %d", len(batch), count, start)
		}
		if b.recorder != nil {
			b.recorder.ObserveBatch(count)
		}

		for i, fd := range batch {
			if err := b.addFrame(store, start+i, fd); err != nil {
				return nil, err
			}
		}
	}

	b.log.WithFields(logrus.Fields{
		"players":  store.TrackCount(ClassPlayer),
		"referees": store.TrackCount(ClassReferee),
		"balls":    store.TrackCount(ClassBall),
	}).Info("Tracking done")

	return store, nil
}

func (b *Builder) addFrame(store *Store, frameNum int, fd FrameDetections) error {
	classIDs := inverse(fd.Names)

	detections := remapGoalkeepers(fd.Detections, fd.Names, classIDs)

	tracked, err := b.tracker.Update(detections)
	if err != nil {
		return fmt.Errorf("tracking frame %d: %w", frameNum, err)
	}

	playerID, hasPlayer := classIDs[utils.PlayerClassName]
	refereeID, hasReferee := classIDs[utils.RefereeClassName]

	for _, d := range tracked {
		switch {
		case hasPlayer && d.ClassID == playerID:
			store.Players[frameNum][d.TrackID] = &Record{Box: d.Box}
		case hasReferee && d.ClassID == refereeID:
			store.Referees[frameNum][d.TrackID] = &Record{Box: d.Box}
		}
	}

	if ballID, ok := classIDs[utils.BallClassName]; ok {
		if ball, found := bestDetection(detections, ballID); found {
			store.Ball[frameNum] = &Record{Box: ball.Box}
		}
	}

	return nil
}

//remapGoalkeepers returns a copy of detections where every goalkeeper carries the player class id
func remapGoalkeepers(detections []Detection, names map[int]string, classIDs map[string]int) []Detection {
	res := make([]Detection, len(detections))
	copy(res, detections)

	playerID, ok := classIDs[utils.PlayerClassName]
	if !ok {
		return res
	}

	for i := range res {
		if names[res[i].ClassID] == utils.GoalkeeperClassName {
			res[i].ClassID = playerID
		}
	}
	return res
}

//bestDetection picks the highest confidence detection of classID, the earliest one wins a tie
func bestDetection(detections []Detection, classID int) (Detection, bool) {
	var best Detection
	found := false
	for _, d := range detections {
		if d.ClassID != classID {
			continue
		}
		if !found || d.Confidence > best.Confidence {
			best = d
			found = true
		}
	}
	return best, found
}

func inverse(names map[int]string) map[string]int {
	res := make(map[string]int, len(names))
	for id, name := range names {
		res[name] = id
	}
	return res
}

func (b *Builder) observeCache(result string) {
	if b.recorder != nil {
		b.recorder.ObserveCacheLookup(result)
	}
}
