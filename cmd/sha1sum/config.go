package main

import (
	"io"
	"os"

	"github.com/apex/log"
	"gopkg.in/yaml.v3"

	"git.scc.kit.edu/sdm/lsdf-sha1sum/worker"
)

type Config struct {
	Worker worker.Config
}

func prepareConfig(file *os.File, logger log.Interface) (*Config, error) {
	config, err := readConfig(file)
	if err != nil {
		_ = file.Close()

		logger.WithError(err).WithFields(log.Fields{
			"name": file.Name(),
		}).Error("Encountered error while reading config file")

		return nil, &MainError{error: err, ExitCode: 2}
	}

	err = file.Close()
	if err != nil {
		logger.WithError(err).WithFields(log.Fields{
			"name": file.Name(),
		}).Error("Encountered error while closing config file")

		return nil, &MainError{error: err, ExitCode: 2}
	}

	return config, nil
}

func readConfig(file *os.File) (*Config, error) {
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	yamlConfig := &Config{}

	err := decoder.Decode(yamlConfig)
	if err == io.EOF {
		// Empty file
		return yamlConfig, nil
	} else if err != nil {
		return nil, err
	}

	return yamlConfig, nil
}
