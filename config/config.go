// Package config loads the YAML configuration file and compiles it into the
// typed instances the pollers run on. The match engine never sees YAML: all
// policy values go through the validating constructors in the policy
// package, and configuration is read exactly once at startup.
package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/boinkor-net/gearbox-maintenance/pkg/log"
	"github.com/boinkor-net/gearbox-maintenance/policy"
)

// DefaultPollInterval is used for instances that do not configure one.
const DefaultPollInterval = 5 * time.Minute

// Instance is one remote Transmission endpoint together with its deletion
// policies and poll interval. Instances are built once at startup and never
// mutated; each is owned exclusively by its poller.
type Instance struct {
	URL      string
	User     string
	Password string

	PollInterval time.Duration
	Policies     []policy.DeletePolicy
}

// String implements Stringer for an Instance, masking the password.
func (i Instance) String() string {
	switch {
	case i.User != "" && i.Password != "":
		return fmt.Sprintf("%s # u:%s:***", i.URL, i.User)
	case i.User != "":
		return fmt.Sprintf("%s # u:%s", i.URL, i.User)
	default:
		return i.URL
	}
}

// LogFields implements log.Fielder for an Instance.
func (i Instance) LogFields() log.Fields {
	return log.Fields{
		"instance":      i.URL,
		"poll_interval": i.PollInterval.String(),
	}
}

type policyConfig struct {
	Name           string    `yaml:"name"`
	Trackers       []string  `yaml:"trackers"`
	MinFileCount   *int      `yaml:"min_file_count"`
	MaxFileCount   *int      `yaml:"max_file_count"`
	MaxRatio       *float64  `yaml:"max_ratio"`
	MinSeedingTime *Duration `yaml:"min_seeding_time"`
	MaxSeedingTime *Duration `yaml:"max_seeding_time"`
	DeleteData     bool      `yaml:"delete_data"`
}

type instanceConfig struct {
	URL          string         `yaml:"url"`
	User         string         `yaml:"user"`
	Password     string         `yaml:"password"`
	PollInterval *Duration      `yaml:"poll_interval"`
	Policies     []policyConfig `yaml:"policies"`
}

// ConfigFile is the on-disk layout of the configuration file.
type ConfigFile struct {
	Instances []instanceConfig `yaml:"instances"`
}

// ParseConfigFile reads the YAML file at path and compiles it into typed
// instances.
//
// It supports relative and absolute paths and environment variables.
func ParseConfigFile(path string) ([]Instance, error) {
	if path == "" {
		return nil, errors.New("no config path specified")
	}

	f, err := os.Open(os.ExpandEnv(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	contents, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, err
	}

	return ParseConfig(contents)
}

// ParseConfig compiles YAML encoded configuration into typed instances.
func ParseConfig(contents []byte) ([]Instance, error) {
	var cfgFile ConfigFile
	if err := yaml.UnmarshalStrict(contents, &cfgFile); err != nil {
		return nil, errors.Wrap(err, "parsing config")
	}

	if len(cfgFile.Instances) == 0 {
		return nil, errors.New("no instances configured")
	}

	instances := make([]Instance, 0, len(cfgFile.Instances))
	for _, ic := range cfgFile.Instances {
		instance, err := ic.compile()
		if err != nil {
			return nil, err
		}
		instances = append(instances, instance)
	}

	return instances, nil
}

func (ic instanceConfig) compile() (Instance, error) {
	if ic.URL == "" {
		return Instance{}, errors.New("instance has no url")
	}

	instance := Instance{
		URL:          ic.URL,
		User:         ic.User,
		Password:     ic.Password,
		PollInterval: DefaultPollInterval,
	}
	if ic.PollInterval != nil {
		instance.PollInterval = time.Duration(*ic.PollInterval)
	}

	for _, pc := range ic.Policies {
		p, err := pc.compile()
		if err != nil {
			return Instance{}, errors.Wrapf(err, "instance %s", ic.URL)
		}
		instance.Policies = append(instance.Policies, p)
	}

	return instance, nil
}

func (pc policyConfig) compile() (policy.DeletePolicy, error) {
	if len(pc.Trackers) == 0 {
		return policy.DeletePolicy{}, errors.Errorf("policy %q has no trackers", pc.Name)
	}

	scope := policy.NewPrecondition(pc.Trackers)
	scope.MinFileCount = pc.MinFileCount
	scope.MaxFileCount = pc.MaxFileCount

	matchWhen := policy.Condition{MaxRatio: pc.MaxRatio}
	if pc.MinSeedingTime != nil {
		d := time.Duration(*pc.MinSeedingTime)
		matchWhen.MinSeedingTime = &d
	}
	if pc.MaxSeedingTime != nil {
		d := time.Duration(*pc.MaxSeedingTime)
		matchWhen.MaxSeedingTime = &d
	}

	return policy.NewDeletePolicy(pc.Name, scope, matchWhen, pc.DeleteData)
}
