package actor

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// SupervisionKind enumerates the supervisor strategies of spec.md §4.3.
type SupervisionKind int

const (
	// Resume keeps the child's state and continues, re-enqueuing the rest
	// of its mailbox.
	Resume SupervisionKind = iota
	// RestartStrategy stops the child, increments its incarnation, and
	// re-runs its setup, bounded by MaxRetries within Window.
	RestartStrategy
	// StopStrategy stops the child (and, recursively, its children first).
	StopStrategy
	// Escalate re-throws the failure to the grandparent.
	Escalate
)

// Supervision describes the strategy a parent applies to a given child's
// failures, attached at spawn time via the WithSupervision option.
type Supervision struct {
	Kind SupervisionKind
	// MaxRetries and Window bound RestartStrategy; zero Window or negative
	// MaxRetries both mean "unbounded", matching spec.md §4.3's default of
	// restart(∞, ∞).
	MaxRetries int
	Window     time.Duration
}

// DefaultSupervision is restart(∞, ∞), the conventional actor-framework
// default cited in spec.md §4.3.
func DefaultSupervision() Supervision {
	return Supervision{Kind: RestartStrategy, MaxRetries: -1, Window: 0}
}

func (s Supervision) unbounded() bool {
	return s.MaxRetries < 0 || s.Window <= 0
}

// DeadLetterLogLevel controls how verbosely dead letters are logged.
type DeadLetterLogLevel int

const (
	LogOff DeadLetterLogLevel = iota
	LogInfo
	LogDebug
)

// Config carries every tunable enumerated in spec.md §6.
type Config struct {
	WorkerThreads                  int
	DefaultThroughput              int
	MailboxCapacity                int // 0 means unbounded
	AskDefaultTimeout              time.Duration
	DefaultSupervision             Supervision
	DeadLetterLogLevel             DeadLetterLogLevel
	ShardingPassivationIdle        time.Duration
	ShardingBufferSize             int
	RouterConsistentHashVirtualNodes int
	TopicStopWhenEmpty              bool
	ShutdownTimeout                 time.Duration
}

// DefaultConfig mirrors the teacher's utils.DefaultConfig() constructor
// style: a single function returning sane defaults that callers may copy
// and override field by field.
func DefaultConfig() Config {
	return Config{
		WorkerThreads:                     0, // 0 => resolved to NumCPU at system start
		DefaultThroughput:                 5,
		MailboxCapacity:                   0,
		AskDefaultTimeout:                 5 * time.Second,
		DefaultSupervision:                DefaultSupervision(),
		DeadLetterLogLevel:                LogInfo,
		ShardingPassivationIdle:           2 * time.Minute,
		ShardingBufferSize:                256,
		RouterConsistentHashVirtualNodes:  40,
		TopicStopWhenEmpty:                true,
		ShutdownTimeout:                   5 * time.Second,
	}
}

// LoadConfig overlays viper-sourced keys onto DefaultConfig. Keys follow the
// dotted names from spec.md §6 (e.g. "worker_threads", "sharding.passivation_idle").
// A nil *viper.Viper returns DefaultConfig() unchanged.
func LoadConfig(v *viper.Viper) Config {
	cfg := DefaultConfig()
	if v == nil {
		return cfg
	}
	bindDefaults(v)
	if n := v.GetInt("worker_threads"); n > 0 {
		cfg.WorkerThreads = n
	}
	if n := v.GetInt("default_throughput"); n > 0 {
		cfg.DefaultThroughput = n
	}
	cfg.MailboxCapacity = v.GetInt("mailbox_capacity")
	if d := v.GetDuration("ask_default_timeout"); d > 0 {
		cfg.AskDefaultTimeout = d
	}
	cfg.DeadLetterLogLevel = parseLogLevel(v.GetString("dead_letter_log_level"))
	if d := v.GetDuration("sharding.passivation_idle"); d > 0 {
		cfg.ShardingPassivationIdle = d
	}
	if n := v.GetInt("sharding.buffer_size"); n > 0 {
		cfg.ShardingBufferSize = n
	}
	if n := v.GetInt("router.consistent_hash_virtual_nodes"); n > 0 {
		cfg.RouterConsistentHashVirtualNodes = n
	}
	cfg.TopicStopWhenEmpty = v.GetBool("topic.stop_when_empty")
	return cfg
}

func bindDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("worker_threads", d.WorkerThreads)
	v.SetDefault("default_throughput", d.DefaultThroughput)
	v.SetDefault("mailbox_capacity", d.MailboxCapacity)
	v.SetDefault("ask_default_timeout", d.AskDefaultTimeout)
	v.SetDefault("dead_letter_log_level", "info")
	v.SetDefault("sharding.passivation_idle", d.ShardingPassivationIdle)
	v.SetDefault("sharding.buffer_size", d.ShardingBufferSize)
	v.SetDefault("router.consistent_hash_virtual_nodes", d.RouterConsistentHashVirtualNodes)
	v.SetDefault("topic.stop_when_empty", d.TopicStopWhenEmpty)
}

func parseLogLevel(s string) DeadLetterLogLevel {
	switch s {
	case "debug":
		return LogDebug
	case "off":
		return LogOff
	default:
		return LogInfo
	}
}

// WatchConfig watches the viper config file for changes and invokes onChange
// with the freshly reloaded Config whenever it is modified. It applies
// nothing itself: a running System keeps the Config given to NewSystem
// (worker count, throughput, mailbox capacity, dead-letter log level) and
// has no method to replace it.
func WatchConfig(v *viper.Viper, onChange func(Config)) error {
	if v.ConfigFileUsed() == "" {
		return fmt.Errorf("actorkit: WatchConfig requires a config file to be set on the viper instance")
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		onChange(LoadConfig(v))
	})
	v.WatchConfig()
	return nil
}
