package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chenBenjamin97/football-analyzer/pkg/utils"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

//Config holds every setting of the analyzer. It is built once by Load and handed to the components that need it.
type Config struct {
	Directory DirectoryConfig `mapstructure:"directory"`
	Video     VideoConfig     `mapstructure:"video"`
	Detector  DetectorConfig  `mapstructure:"detector"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Frontend  FrontendConfig  `mapstructure:"frontend"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
}

//DirectoryConfig lists the directories the analyzer reads from and writes to
type DirectoryConfig struct {
	Root    string `mapstructure:"root"`
	Source  string `mapstructure:"source"`  //uploaded videos
	Ready   string `mapstructure:"ready"`   //annotated videos in production format
	Temp    string `mapstructure:"temp"`    //uploads in progress
	Models  string `mapstructure:"models"`  //detector weights
	Cache   string `mapstructure:"cache"`   //cached track stores, empty disables caching
	Reports string `mapstructure:"reports"` //per run report directories
}

type VideoConfig struct {
	ProdFormat string  `mapstructure:"prod_format"`
	Ffmpeg     string  `mapstructure:"ffmpeg"`
	OutputFPS  float64 `mapstructure:"output_fps"`
}

//DetectorConfig describes the external python processes running detection and tracking
type DetectorConfig struct {
	Python        string  `mapstructure:"python"`
	Model         string  `mapstructure:"model"` //weights used by uploads through the API
	Script        string  `mapstructure:"script"`
	TrackerScript string  `mapstructure:"tracker_script"`
	Confidence    float64 `mapstructure:"confidence"`
}

type HTTPConfig struct {
	Port  int  `mapstructure:"port"`
	Pprof bool `mapstructure:"pprof"` //exposes /debug/pprof
}

type FrontendConfig struct {
	StaticFilesPath string `mapstructure:"static-files-path"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("directory.root", "data")
	v.SetDefault("directory.source", "data/source")
	v.SetDefault("directory.ready", "data/ready")
	v.SetDefault("directory.temp", "data/temp")
	v.SetDefault("directory.models", "models")
	v.SetDefault("directory.cache", "stubs")
	v.SetDefault("directory.reports", "reports")
	v.SetDefault("video.prod_format", "mp4")
	v.SetDefault("video.ffmpeg", "ffmpeg")
	v.SetDefault("video.output_fps", 24)
	v.SetDefault("detector.python", "python3")
	v.SetDefault("detector.model", "best.pt")
	v.SetDefault("detector.script", "detector/detect.py")
	v.SetDefault("detector.tracker_script", "detector/track.py")
	v.SetDefault("detector.confidence", utils.DetectionConfidence)
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.pprof", false)
	v.SetDefault("frontend.static-files-path", "./frontend/")
	v.SetDefault("database.path", "data/reports.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

//Load reads the configuration. An explicit path must exist, otherwise 'config.yaml' is searched in '.' and './config' and defaults are used when none is found.
//A '.env' file is loaded first if present and FA_ prefixed environment variables override file values (FA_HTTP_PORT overrides http.port).
func Load(path string) (*Config, error) {
	_ = godotenv.Load() //.env is optional

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("FA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("could not read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("could not parse config: %w", err)
	}

	return &cfg, nil
}

//Validate reports missing critical configurations
func (c *Config) Validate() error {
	missing := make([]string, 0)
	if c.Video.ProdFormat == "" {
		missing = append(missing, "video.prod_format")
	}
	if c.Detector.Script == "" {
		missing = append(missing, "detector.script")
	}
	if c.Detector.TrackerScript == "" {
		missing = append(missing, "detector.tracker_script")
	}
	if c.Directory.Models == "" {
		missing = append(missing, "directory.models")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing critical configurations: %s", strings.Join(missing, ", "))
	}
	return nil
}

//EnsureDirs creates every configured directory that does not exist yet
func (c *Config) EnsureDirs() error {
	dirs := []string{c.Directory.Root, c.Directory.Source, c.Directory.Ready, c.Directory.Temp, c.Directory.Models, c.Directory.Cache, c.Directory.Reports}
	if c.Database.Path != "" {
		dirs = append(dirs, filepath.Dir(c.Database.Path))
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating '%s' directory: %w", dir, err)
		}
	}
	return nil
}

//ModelPath resolves a model reference: absolute paths are kept, anything else is looked up in the models directory
func (c *Config) ModelPath(model string) string {
	if filepath.IsAbs(model) {
		return model
	}
	return filepath.Join(c.Directory.Models, model)
}
