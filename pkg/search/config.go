package search

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Config holds the process-wide constants the core consumes: the worker
// cap and the log-rotation depth cap.
type Config struct {
	// MaxParallelTasks is the upper bound on scan workers. Zero disables
	// parallelism (serial execution).
	MaxParallelTasks uint32 `yaml:"max_parallel_tasks"`
	// MaxLogrotateDepth caps, per rotated-log series, how many files
	// (including the head) are kept after pruning.
	MaxLogrotateDepth uint32 `yaml:"max_logrotate_depth"`
}

// DefaultConfig is a conservative starting point: serial scanning (a zero
// MaxParallelTasks means one worker; see Searcher.numWorkers) and a
// generous rotation depth.
var DefaultConfig = Config{
	MaxParallelTasks:  0, // one worker; resolved by Searcher.numWorkers on each Search
	MaxLogrotateDepth: 5,
}

// LoadConfig builds a Config by layering, lowest precedence first:
// DefaultConfig, an optional YAML file at yamlPath (ignored if empty or
// missing), then the LOGSEARCH_MAX_PARALLEL_TASKS / LOGSEARCH_MAX_LOGROTATE_DEPTH
// environment variables, themselves first populated from an optional
// envPath .env file.
func LoadConfig(yamlPath, envPath string) (Config, error) {
	cfg := DefaultConfig

	if yamlPath != "" {
		data, err := os.ReadFile(yamlPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, err
			}
		case os.IsNotExist(err):
			// no config file is not an error; defaults stand.
		default:
			return Config{}, err
		}
	}

	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
			return Config{}, err
		}
	}

	if v, ok := os.LookupEnv("LOGSEARCH_MAX_PARALLEL_TASKS"); ok {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return Config{}, err
		}
		cfg.MaxParallelTasks = uint32(n)
	}
	if v, ok := os.LookupEnv("LOGSEARCH_MAX_LOGROTATE_DEPTH"); ok {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return Config{}, err
		}
		cfg.MaxLogrotateDepth = uint32(n)
	}

	return cfg, nil
}
