package config

import (
	"flag"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	dataFileCmd = flag.String("data", "", "data file path (overrides DATA_FILE)")
	httpCmd     = flag.Bool("http", false, "serve the HTTP API")
	portCmd     = flag.Int("port", 0, "HTTP server port (overrides HTTP_PORT)")
	zmqCmd      = flag.Bool("zmq", false, "serve the ZeroMQ API")
	remoteCmd   = flag.String("remote", "", "run the command loop against a remote HTTP server")
)

const (
	defaultDataFile        = "data.db"
	defaultInitialCapacity = 16
	defaultLogLevel        = "info"
	defaultLogFile         = "kvstore.log"
	defaultServerPort      = 3000
	defaultZmqApiPort      = 5555
)

type Config struct {
	DataFile        string
	InitialCapacity int
	LogLevel        string
	LogFile         string
	HttpEnabled     bool
	HttpHost        string
	ServerPort      int
	ZmqEnabled      bool
	ZmqApiPort      int
	RemoteUrl       string
}

func LoadConfig() Config {
	godotenv.Load(".env")
	cfg := Config{
		DataFile:        getString("DATA_FILE", defaultDataFile),
		InitialCapacity: getInt("INITIAL_CAPACITY", defaultInitialCapacity),
		LogLevel:        getString("LOG_LEVEL", defaultLogLevel),
		LogFile:         os.Getenv("LOG_FILE"),
		HttpEnabled:     getBool("HTTP_ENABLED", false),
		HttpHost:        os.Getenv("HTTP_HOST"),
		ServerPort:      getInt("HTTP_PORT", defaultServerPort),
		ZmqEnabled:      getBool("ZMQ_ENABLED", false),
		ZmqApiPort:      getInt("ZMQ_API_PORT", defaultZmqApiPort),
		RemoteUrl:       os.Getenv("REMOTE_URL"),
	}
	if _, set := os.LookupEnv("LOG_FILE"); !set {
		cfg.LogFile = defaultLogFile
	}

	if *dataFileCmd != "" {
		cfg.DataFile = *dataFileCmd
	}
	if *httpCmd {
		cfg.HttpEnabled = true
	}
	if *portCmd > 0 {
		cfg.ServerPort = *portCmd
	}
	if *zmqCmd {
		cfg.ZmqEnabled = true
	}
	if *remoteCmd != "" {
		cfg.RemoteUrl = *remoteCmd
	}
	return cfg
}

func getString(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func getInt(name string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(name))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getBool(name string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(name))
	if err != nil {
		return fallback
	}
	return v
}
