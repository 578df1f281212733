package config

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Init binds environment variables and root-command flags into viper.
// Every binary calls this once before reading any setting.
func Init(root *cobra.Command) {
	viper.AutomaticEnv()
	_ = godotenv.Load(".env")
	if root != nil {
		_ = viper.BindPFlags(root.PersistentFlags())
	}
	setDefaults()
}

func setDefaults() {
	viper.SetDefault(KeyOllamaURL, "http://localhost:11434")
	viper.SetDefault(KeyLogLevel, "info")
	viper.SetDefault(KeyEmbeddingModel, "nomic-embed-text")
	viper.SetDefault(KeyLLMModel, "llama3.2:3b")
	viper.SetDefault(KeyLLMCallTimeout, "2m")
	viper.SetDefault(KeyMailboxDir, "./mailboxes")
	viper.SetDefault(KeyExecutionMode, "FULL")
	viper.SetDefault(KeyMaxEmbedBatch, 100)
	viper.SetDefault(KeyTopK, 5)
	viper.SetDefault(KeyContextBudget, 12000)
	viper.SetDefault(KeyAutoMigrate, true)
	viper.SetDefault(KeyMigrationsDir, "internal/db/migrations")
	viper.SetDefault(KeyDBDebug, false)
	viper.SetDefault(KeyMCPListenAddr, ":8080")
	viper.SetDefault(KeyHistoryFile, "")
	viper.SetDefault(KeyTagRulesFile, "")
	viper.SetDefault(KeyTagThreshold, 0.45)
	viper.SetDefault(KeyTagUseEmbedding, false)
}

func PostgresURL() string       { return viper.GetString(KeyPostgresURL) }
func OllamaURL() string         { return viper.GetString(KeyOllamaURL) }
func LogLevel() string          { return viper.GetString(KeyLogLevel) }
func EmbeddingModel() string    { return viper.GetString(KeyEmbeddingModel) }
func LLMModel() string          { return viper.GetString(KeyLLMModel) }
func LLMCallTimeout() string    { return viper.GetString(KeyLLMCallTimeout) }
func MailboxDir() string        { return viper.GetString(KeyMailboxDir) }
func ExecutionMode() string     { return viper.GetString(KeyExecutionMode) }
func MaxEmbedBatch() int        { return viper.GetInt(KeyMaxEmbedBatch) }
func TopK() int                 { return viper.GetInt(KeyTopK) }
func ContextBudget() int        { return viper.GetInt(KeyContextBudget) }
func GitHubToken() string       { return viper.GetString(KeyGitHubToken) }
func AutoMigrate() bool         { return viper.GetBool(KeyAutoMigrate) }
func MigrationsDir() string     { return viper.GetString(KeyMigrationsDir) }
func DBDebug() bool             { return viper.GetBool(KeyDBDebug) }
func MCPListenAddr() string     { return viper.GetString(KeyMCPListenAddr) }
func HistoryFile() string       { return viper.GetString(KeyHistoryFile) }
func TagRulesFile() string      { return viper.GetString(KeyTagRulesFile) }
func TagThreshold() float64     { return viper.GetFloat64(KeyTagThreshold) }
func TagUseEmbedding() bool     { return viper.GetBool(KeyTagUseEmbedding) }
