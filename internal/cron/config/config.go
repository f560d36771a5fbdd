package cron_config

type Config struct {
	// Heartbeat check, every minute
	CronScheduleHeartbeat string `env:"CRON_SCHEDULE_HEARTBEAT" envDefault:"0 * * * * *"`
	// Ingestion pass over all active accounts, every 5 minutes
	CronScheduleIngestion string `env:"CRON_SCHEDULE_INGESTION" envDefault:"0 */5 * * * *"`
}
