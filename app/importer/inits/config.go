package inits

import (
	"fmt"
	"os"
	"strings"

	"student-score-network/app/importer/config"
)

func Config() (*config.Config, error) {
	var cfg config.Config
	{
		mode, exist := os.LookupEnv("MODE")
		cfg.IsProd = exist && strings.HasPrefix(strings.ToLower(mode), "p")
	}

	if serverEp, exist := os.LookupEnv("SERVER_ENDPOINT"); !exist {
		return nil, fmt.Errorf("SERVER_ENDPOINT environment variable not set")
	} else {
		cfg.ServerEndpoint = serverEp
	}

	if username, exist := os.LookupEnv("USERNAME"); !exist {
		return nil, fmt.Errorf("USERNAME environment variable not set")
	} else {
		cfg.Username = username
	}

	if password, exist := os.LookupEnv("PASSWORD"); !exist {
		return nil, fmt.Errorf("PASSWORD environment variable not set")
	} else {
		cfg.Password = password
	}

	if csvPath, exist := os.LookupEnv("CSV_PATH"); !exist {
		return nil, fmt.Errorf("CSV_PATH environment variable not set")
	} else {
		cfg.CSVPath = csvPath
	}

	return &cfg, nil
}
