package main

import (
	"fmt"
	"strconv"

	"github.com/chenBenjamin97/football-analyzer/pkg/api"
	"github.com/chenBenjamin97/football-analyzer/pkg/video"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func analyzeCommand(a *app) *cobra.Command {
	var modelName, videoPath string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a single video file",
		Long:  `Detects and tracks players, referees and the ball on a video, draws them with the ball possession of both teams and writes the result under the reports directory.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []video.PipelineOption{
				video.WithPipelineLogger(a.log),
				video.WithMetrics(a.metrics),
				video.WithReports(a.reports),
			}
			if noCache {
				opts = append(opts, video.WithoutCache())
			}

			res, err := video.NewPipeline(a.cfg, opts...).Analyze(modelName, videoPath)
			if err != nil {
				return err
			}

			a.log.WithFields(logrus.Fields{
				"report": res.ReportID,
				"chart":  res.ChartPath,
				"team1":  fmt.Sprintf("%.2f%%", res.Team1Share*100),
				"team2":  fmt.Sprintf("%.2f%%", res.Team2Share*100),
			}).Info("Analysis finished")
			fmt.Fprintln(cmd.OutOrStdout(), res.OutputPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&modelName, "model", "m", "best.pt", "Detector weights, relative to the models directory")
	cmd.Flags().StringVarP(&videoPath, "video", "v", "", "Path to the input video")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Run detection even when cached tracks exist")
	_ = cmd.MarkFlagRequired("video")

	return cmd
}

func serveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the upload, playback and report HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline := video.NewPipeline(a.cfg,
				video.WithPipelineLogger(a.log),
				video.WithMetrics(a.metrics),
				video.WithReports(a.reports),
			)

			r := api.SetRouter(api.Deps{
				Config:   a.cfg,
				Analyzer: pipeline,
				Reports:  a.reports,
				Metrics:  a.metrics,
				Log:      a.log,
			})

			a.log.WithField("port", a.cfg.HTTP.Port).Info("Listening")
			return r.Run(":" + strconv.Itoa(a.cfg.HTTP.Port))
		},
	}
}
