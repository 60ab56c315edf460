package api

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/chenBenjamin97/football-analyzer/pkg/config"
	"github.com/chenBenjamin97/football-analyzer/pkg/metrics"
	"github.com/chenBenjamin97/football-analyzer/pkg/report"
	"github.com/chenBenjamin97/football-analyzer/pkg/utils"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

//Analyzer tags an uploaded video, video.Pipeline implements it
type Analyzer interface {
	Tag(srcVideoName string) error
}

//Deps are the components the HTTP routes work with. Reports and Metrics may be nil.
type Deps struct {
	Config   *config.Config
	Analyzer Analyzer
	Reports  *report.Store
	Metrics  *metrics.Metrics
	Log      logrus.FieldLogger
}

func SetRouter(deps Deps) *gin.Engine {
	log := deps.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	dirs := deps.Config.Directory
	prodFormat := deps.Config.Video.ProdFormat

	r := gin.Default()

	//serve html pages to client
	if static := deps.Config.Frontend.StaticFilesPath; static != "" {
		r.Static("/client", static)
		r.StaticFile("/", filepath.Join(static, "home_page", "dist", "index.html"))
	}

	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	if deps.Config.HTTP.Pprof {
		pprof.Register(r)
	}

	apiRoutes := r.Group("/api")

	apiRoutes.GET("/ReadyVideosNames", func(ctx *gin.Context) {
		if names, err := utils.ListDir(dirs.Ready); err != nil {
			log.WithError(err).Error("api/ReadyVideosNames: listing directory")
			ctx.Status(http.StatusInternalServerError)
		} else {
			ctx.JSON(http.StatusOK, names)
		}
	})

	apiRoutes.GET("/UserUploadsVideosNames", func(ctx *gin.Context) {
		if names, err := utils.ListDir(dirs.Source); err != nil {
			log.WithError(err).Error("api/UserUploadsVideosNames: listing directory")
			ctx.Status(http.StatusInternalServerError)
		} else {
			ctx.JSON(http.StatusOK, names)
		}
	})

	apiRoutes.GET("/Play", func(ctx *gin.Context) {
		videoName := ctx.Query("name")
		if videoName == "" || videoName != filepath.Base(videoName) {
			ctx.Status(http.StatusNotAcceptable) //missing or invalid url parameter
			return
		}

		analyzed := ctx.Query("analyzed")
		if analyzed != "true" && analyzed != "false" {
			ctx.Status(http.StatusNotAcceptable) //missing url parameter
			return
		}

		var videoPath string
		if analyzed == "true" {
			videoPath = filepath.Join(dirs.Ready, videoName+"."+prodFormat)
		} else {
			videoPath = filepath.Join(dirs.Source, videoName+"."+prodFormat)
		}

		if _, err := os.Stat(videoPath); err != nil {
			if os.IsNotExist(err) {
				ctx.Status(http.StatusNotFound)
			} else {
				ctx.Status(http.StatusInternalServerError)
			}
			return
		}

		ctx.Header("Content-Type", "video/"+prodFormat)
		http.ServeFile(ctx.Writer, ctx.Request, videoPath)
	})

	apiRoutes.POST("/Upload", func(ctx *gin.Context) {
		file, fHeader, err := ctx.Request.FormFile("video")
		if err != nil {
			ctx.Status(http.StatusBadRequest)
			return
		}
		defer file.Close()

		fileName := filepath.Base(fHeader.Filename)
		if existNames, err := utils.ListDir(dirs.Source); err != nil {
			ctx.Status(http.StatusInternalServerError)
			return
		} else if utils.InSlice(fileName, existNames) {
			ctx.Status(http.StatusNotAcceptable)
			return
		}

		log.WithFields(logrus.Fields{"name": fileName, "size": fHeader.Size}).Info("api/Upload: Received new file")

		srcFilePath := filepath.Join(dirs.Source, fileName)
		if err := writeUpload(file, dirs.Temp, srcFilePath); err != nil {
			log.WithError(err).WithField("path", srcFilePath).Error("api/Upload: Could not write file")
			ctx.Status(http.StatusInternalServerError)
			return
		}

		go func() {
			if err := deps.Analyzer.Tag(fileName); err != nil {
				log.WithError(err).WithField("name", fileName).Error("api/Upload: analysis failed")
			}
		}()

		ctx.JSON(http.StatusAccepted, gin.H{"name": fileName})
	})

	apiRoutes.GET("/Reports", func(ctx *gin.Context) {
		if deps.Reports == nil {
			ctx.JSON(http.StatusOK, []report.Report{})
			return
		}
		reports, err := deps.Reports.List()
		if err != nil {
			log.WithError(err).Error("api/Reports: listing reports")
			ctx.Status(http.StatusInternalServerError)
			return
		}
		ctx.JSON(http.StatusOK, reports)
	})

	apiRoutes.GET("/Reports/:id", func(ctx *gin.Context) {
		if rep, ok := lookupReport(ctx, deps.Reports, log); ok {
			ctx.JSON(http.StatusOK, rep)
		}
	})

	apiRoutes.GET("/Reports/:id/Chart", func(ctx *gin.Context) {
		if rep, ok := lookupReport(ctx, deps.Reports, log); ok {
			ctx.File(rep.ChartPath)
		}
	})

	return r
}

//lookupReport answers the request itself when the report can not be returned
func lookupReport(ctx *gin.Context, reports *report.Store, log logrus.FieldLogger) (*report.Report, bool) {
	if reports == nil {
		ctx.Status(http.StatusNotFound)
		return nil, false
	}
	rep, err := reports.Get(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, report.ErrNotFound) {
			ctx.Status(http.StatusNotFound)
		} else {
			log.WithError(err).Error("api/Reports: reading report")
			ctx.Status(http.StatusInternalServerError)
		}
		return nil, false
	}
	return rep, true
}

//writeUpload stores an uploaded file read only.
//The content is first written to stagingDir (path's directory when empty) and only linked to path once complete, so path never holds a partial upload.
//stagingDir must be on the same file system as path. Like O_EXCL, an existing path is never replaced.
func writeUpload(src io.Reader, stagingDir, path string) error {
	if stagingDir == "" {
		stagingDir = filepath.Dir(path)
	}

	tmp, err := os.CreateTemp(stagingDir, "upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o444); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Link(tmp.Name(), path)
}
