package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Parse reads an RC file on top of the defaults.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var section string
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.ToLower(strings.TrimSpace(line[1 : len(line)-1]))
			continue
		}

		// key = value or key: value
		var parts []string
		if strings.Contains(line, "=") {
			parts = strings.SplitN(line, "=", 2)
		} else if strings.Contains(line, ":") {
			parts = strings.SplitN(line, ":", 2)
		} else {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if len(value) >= 2 && strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") {
			value = value[1 : len(value)-1]
		}

		if err := cfg.Set(section, key, value); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}

	return cfg, scanner.Err()
}

// Set assigns one setting. section is "" for root keys. Unknown sections
// and keys are ignored.
func (c *Config) Set(section, key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	var err error
	switch strings.ToLower(section) {
	case "":
		err = c.setRoot(key, value)
	case "database":
		err = c.setDatabase(key, value)
	case "canvas":
		err = c.setCanvas(key, value)
	case "janitor":
		if key == "schedule" {
			c.Janitor.Schedule = value
		}
	}
	if err != nil {
		if section == "" {
			return fmt.Errorf("error in root section: %w", err)
		}
		return fmt.Errorf("error in section [%s]: %w", section, err)
	}
	return nil
}

func (c *Config) setRoot(key, value string) error {
	switch key {
	case "data_dir":
		c.DataDir = value
	case "debug":
		b, err := parseBool(key, value)
		if err != nil {
			return err
		}
		c.Debug = b
	}
	return nil
}

func (c *Config) setDatabase(key, value string) error {
	d := &c.Database
	switch key {
	case "driver":
		d.Driver = strings.ToLower(value)
	case "dsn":
		d.DSN = value
	case "host":
		d.Host = value
	case "port":
		n, err := parseInt(key, value)
		if err != nil {
			return err
		}
		d.Port = n
	case "user":
		d.User = value
	case "name":
		d.Name = value
	case "sslmode":
		d.SSLMode = value
	case "mongo_uri":
		d.MongoURI = value
	case "mongo_database":
		d.MongoDatabase = value
	}
	return nil
}

func (c *Config) setCanvas(key, value string) error {
	cv := &c.Canvas
	var err error
	switch key {
	case "width":
		cv.Width, err = parseInt(key, value)
	case "height":
		cv.Height, err = parseInt(key, value)
	case "background":
		cv.Background = value
	case "night_mode":
		cv.NightMode, err = parseBool(key, value)
	case "history_depth":
		cv.HistoryDepth, err = parseInt(key, value)
		if err == nil && cv.HistoryDepth < 0 {
			err = fmt.Errorf("history_depth must not be negative")
		}
	case "resize_policy":
		cv.ResizePolicy = strings.ToLower(value)
	case "spray_interval":
		cv.SprayInterval, err = time.ParseDuration(value)
		if err != nil {
			err = fmt.Errorf("invalid duration for key %s: %w", key, err)
		}
	case "brush":
		cv.Brush = strings.ToLower(value)
	case "color":
		cv.Color = value
	case "size":
		cv.Size, err = parseFloat(key, value)
	case "opacity":
		cv.Opacity, err = parseFloat(key, value)
	}
	return err
}

func parseBool(key, value string) (bool, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	return b, nil
}

func parseInt(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for key %s: %w", key, err)
	}
	return n, nil
}

func parseFloat(key, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number for key %s: %w", key, err)
	}
	return f, nil
}
