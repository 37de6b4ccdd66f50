// Package preset loads a contest preset from a YAML file
package preset

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	perr "contestwatch/internal/platform/errors"
	pstrings "contestwatch/internal/platform/strings"
	"contestwatch/internal/services/contest/domain"

	"gopkg.in/yaml.v3"
)

// Preset is the on disk shape
//
//	secret_word: pineapple
//	api_key: ${YOUTUBE_API_KEY}
//	video_id: dQw4w9WgXcQ
//	poll_interval: 10s
type Preset struct {
	SecretWord   string `yaml:"secret_word"`
	APIKey       string `yaml:"api_key"`
	VideoID      string `yaml:"video_id"`
	PollInterval string `yaml:"poll_interval"`

	interval time.Duration
}

// Config returns the contest config part of the preset
func (p Preset) Config() domain.Config {
	return domain.Config{SecretWord: p.SecretWord, APIKey: p.APIKey, VideoID: p.VideoID}
}

// Interval is the parsed poll interval, zero when unset
func (p Preset) Interval() time.Duration { return p.interval }

// Load reads path. An empty path yields an empty preset; a missing file is an error
func Load(path string) (Preset, error) {
	if strings.TrimSpace(path) == "" {
		return Preset{}, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Preset{}, perr.NotFoundf("preset %s not found", path)
		}
		return Preset{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "read preset %s", path)
	}
	return Parse(b)
}

// Parse decodes a preset document. Unknown keys are rejected and values may
// reference environment variables as $VAR or ${VAR}
func Parse(b []byte) (Preset, error) {
	var p Preset
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Preset{}, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "invalid preset")
	}

	p.SecretWord = os.ExpandEnv(p.SecretWord)
	p.APIKey = os.ExpandEnv(p.APIKey)
	p.VideoID = os.ExpandEnv(p.VideoID)

	if s := strings.TrimSpace(p.PollInterval); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			return Preset{}, perr.WithField(perr.InvalidArgf("poll_interval %q is not a positive duration", s), "poll_interval")
		}
		p.interval = d
	}
	return p, nil
}

// Merge overlays non blank values of over onto base
func Merge(base domain.Config, over domain.Config) domain.Config {
	return domain.Config{
		SecretWord: pstrings.FirstNonBlank(over.SecretWord, base.SecretWord),
		APIKey:     pstrings.FirstNonBlank(over.APIKey, base.APIKey),
		VideoID:    pstrings.FirstNonBlank(over.VideoID, base.VideoID),
	}
}
