package cfg

type Cfg struct {
	// Server configuration
	Host string
	Port string

	// Storage configuration
	DatabasePath string
	FeedsDir     string

	// Application configuration
	BaseUrl           string
	WorkerCount       int
	SchedulerInterval int
	APIKey            string

	// Application metadata
	UserAgent string
	Timezone  string
	LogLevel  string
	Version   string
}
