package video

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chenBenjamin97/football-analyzer/pkg/config"
	"github.com/chenBenjamin97/football-analyzer/pkg/metrics"
	"github.com/chenBenjamin97/football-analyzer/pkg/possession"
	"github.com/chenBenjamin97/football-analyzer/pkg/report"
	"github.com/chenBenjamin97/football-analyzer/pkg/tracks"
	"github.com/chenBenjamin97/football-analyzer/pkg/utils"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

//ErrModelNotFound is returned when the detector weights do not exist
var ErrModelNotFound = errors.New("model not found")

//Collaborators are the detection and tracking processes of one analysis
type Collaborators struct {
	Detector tracks.Detector
	Tracker  tracks.Tracker
	Close    func() error
}

//OpenFunc starts the collaborators analysing videoPath with the weights at modelPath
type OpenFunc func(modelPath, videoPath string) (*Collaborators, error)

//Result describes a finished analysis
type Result struct {
	ReportID   string
	OutputPath string
	ChartPath  string
	Frames     int
	Team1Share float64
	Team2Share float64
	Timeline   *possession.Timeline
}

//Pipeline runs the whole analysis of a video: detection and tracking, ball repair, team split, possession and annotation
type Pipeline struct {
	cfg        *config.Config
	log        logrus.FieldLogger
	metrics    *metrics.Metrics
	reports    *report.Store
	open       OpenFunc
	classifier func() TeamClassifier
	composer   *Composer
	save       func(frames []gocv.Mat, path string, fps float64) error
	useCache   bool
	now        func() time.Time
}

//PipelineOption customizes a Pipeline
type PipelineOption func(*Pipeline)

func WithPipelineLogger(l logrus.FieldLogger) PipelineOption {
	return func(p *Pipeline) { p.log = l }
}

func WithMetrics(m *metrics.Metrics) PipelineOption {
	return func(p *Pipeline) { p.metrics = m }
}

//WithReports makes every finished analysis be recorded in the given store
func WithReports(s *report.Store) PipelineOption {
	return func(p *Pipeline) { p.reports = s }
}

//WithOpener replaces the python processes with other collaborators
func WithOpener(open OpenFunc) PipelineOption {
	return func(p *Pipeline) { p.open = open }
}

//WithClassifier sets the team classifier factory, one classifier is created per analysis
func WithClassifier(newClassifier func() TeamClassifier) PipelineOption {
	return func(p *Pipeline) { p.classifier = newClassifier }
}

//WithoutCache forces detection even when a cached track store exists
func WithoutCache() PipelineOption {
	return func(p *Pipeline) { p.useCache = false }
}

//NewPipeline creates a pipeline running the configured python detector and tracker
func NewPipeline(cfg *config.Config, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		cfg:        cfg,
		log:        logrus.StandardLogger(),
		classifier: func() TeamClassifier { return NewUniformClassifier() },
		composer:   NewComposer(),
		save:       SaveVideo,
		useCache:   cfg.Directory.Cache != "",
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.open == nil {
		p.open = processOpener(cfg.Detector, p.log)
	}
	return p
}

func processOpener(cfg config.DetectorConfig, log logrus.FieldLogger) OpenFunc {
	return func(modelPath, videoPath string) (*Collaborators, error) {
		tracker, err := StartProcessTracker(cfg.Python, cfg.TrackerScript)
		if err != nil {
			return nil, err
		}
		detector := &ProcessDetector{
			Python:     cfg.Python,
			Script:     cfg.Script,
			Model:      modelPath,
			Video:      videoPath,
			Confidence: cfg.Confidence,
			Log:        log,
		}
		return &Collaborators{Detector: detector, Tracker: tracker, Close: tracker.Close}, nil
	}
}

//Analyze runs the pipeline over the video at videoPath with the named detector weights.
//The annotated '.avi', the possession chart and the report row are written under a new timestamped directory of the reports directory.
func (p *Pipeline) Analyze(modelName, videoPath string) (res *Result, err error) {
	start := time.Now()
	frameCount := 0
	defer func() {
		p.metrics.ObserveAnalysis(frameCount, time.Since(start), err)
	}()

	log := p.log.WithField("video", videoPath)

	modelPath := p.cfg.ModelPath(modelName)
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("Analyze: %w: '%s': %v", ErrModelNotFound, modelPath, err)
	}

	log.Info("Reading video")
	frames, _, err := ReadVideo(videoPath)
	if err != nil {
		return nil, err
	}
	defer CloseFrames(frames)
	frameCount = len(frames)

	digest, err := VideoDigest(videoPath)
	if err != nil {
		return nil, err
	}

	collab, err := p.open(modelPath, videoPath)
	if err != nil {
		return nil, fmt.Errorf("Analyze: starting detection: %w", err)
	}
	defer func() {
		if collab.Close == nil {
			return
		}
		if cerr := collab.Close(); cerr != nil {
			log.WithError(cerr).Warn("Closing detection processes")
		}
	}()

	key := tracks.CacheKey{Video: digest, Model: modelName, Frames: len(frames)}
	return p.analyzeFrames(frames, collab, key, filepath.Base(videoPath))
}

//VideoDigest returns the content digest identifying a video in the track cache
func VideoDigest(videoPath string) (string, error) {
	digest, err := tracks.VideoDigest(videoPath)
	if err != nil {
		return "", fmt.Errorf("VideoDigest: hashing '%s': %w", videoPath, err)
	}
	return digest, nil
}

//analyzeFrames runs every stage after decoding on frames already in memory
func (p *Pipeline) analyzeFrames(frames []gocv.Mat, collab *Collaborators, key tracks.CacheKey, videoName string) (*Result, error) {
	log := p.log.WithField("video", videoName)

	opts := []tracks.BuilderOption{tracks.WithLogger(log)}
	if p.metrics != nil {
		opts = append(opts, tracks.WithRecorder(p.metrics))
	}
	if p.useCache && p.cfg.Directory.Cache != "" {
		opts = append(opts, tracks.WithCache(&tracks.Cache{Dir: p.cfg.Directory.Cache}))
	}

	store, err := tracks.NewBuilder(collab.Detector, collab.Tracker, opts...).ObjectTracks(len(frames), key)
	if err != nil {
		return nil, fmt.Errorf("analyzeFrames: %w", err)
	}

	if err := store.RepairBall(); err != nil {
		return nil, fmt.Errorf("analyzeFrames: %w", err)
	}
	store.AddPositions()

	if err := AssignTeams(p.classifier(), frames, store); err != nil {
		return nil, fmt.Errorf("analyzeFrames: assigning teams: %w", err)
	}

	tl := possession.Aggregate(store, possession.NewAssigner())
	team1, team2, err := tl.Shares(tl.Len() - 1)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"team1": team1, "team2": team2}).Info("Possession computed")

	annotated, err := p.composer.Draw(frames, store, tl)
	if err != nil {
		return nil, fmt.Errorf("analyzeFrames: %w", err)
	}
	defer CloseFrames(annotated)

	runDir := filepath.Join(p.cfg.Directory.Reports, p.now().Format("20060102_150405"))
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, fmt.Errorf("analyzeFrames: creating '%s': %w", runDir, err)
	}

	base := strings.TrimSuffix(videoName, filepath.Ext(videoName))
	res := &Result{
		OutputPath: filepath.Join(runDir, base+".avi"),
		ChartPath:  filepath.Join(runDir, base+"_possession.png"),
		Frames:     len(frames),
		Team1Share: team1,
		Team2Share: team2,
		Timeline:   tl,
	}

	fps := p.cfg.Video.OutputFPS
	if fps <= 0 {
		fps = utils.OutputFPS
	}
	if err := p.save(annotated, res.OutputPath, fps); err != nil {
		return nil, err
	}
	if err := report.PlotPossession(tl, res.ChartPath); err != nil {
		return nil, err
	}

	if p.reports != nil {
		row := &report.Report{
			VideoName:  videoName,
			Model:      key.Model,
			Frames:     res.Frames,
			Team1Share: team1,
			Team2Share: team2,
			OutputPath: res.OutputPath,
			ChartPath:  res.ChartPath,
		}
		if err := p.reports.Save(row); err != nil {
			return nil, fmt.Errorf("analyzeFrames: saving report: %w", err)
		}
		res.ReportID = row.ID
	}

	log.WithField("output", res.OutputPath).Info("Video analysed")
	return res, nil
}

//Tag analyses an uploaded video from the source directory with the configured model, and converts the annotated output into
//the 'ready' directory in the production format. srcVideoName should include file's extension ('.mp4', etc.)
func (p *Pipeline) Tag(srcVideoName string) error {
	srcVideoPath := filepath.Join(p.cfg.Directory.Source, srcVideoName)
	base := strings.TrimSuffix(srcVideoName, filepath.Ext(srcVideoName))
	outputVideoPath := filepath.Join(p.cfg.Directory.Ready, base+"."+p.cfg.Video.ProdFormat)

	res, err := p.Analyze(p.cfg.Detector.Model, srcVideoPath)
	if err != nil {
		p.log.WithError(err).WithField("video", srcVideoName).Error("Tag: analysis failed")
		return err
	}

	if err := Convert(p.cfg.Video.Ffmpeg, res.OutputPath, outputVideoPath); err != nil {
		p.log.WithError(err).WithField("video", srcVideoName).Error("Tag: conversion failed")
		return err
	}
	return nil
}
