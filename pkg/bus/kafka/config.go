package kafka

import "time"

// Config holds the Kafka connection settings.
type Config struct {
	Brokers      []string      `env:"BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	MinBytes     int           `env:"MIN_BYTES" envDefault:"1"`
	MaxBytes     int           `env:"MAX_BYTES" envDefault:"10000000"`
	MaxWait      time.Duration `env:"MAX_WAIT" envDefault:"500ms"`
	BatchTimeout time.Duration `env:"BATCH_TIMEOUT" envDefault:"10ms"`
}
