package config

// SampleConfig returns a fully commented sample configuration file.
func SampleConfig() string {
	return `# AttackMap configuration file
# Place at ./.attackmap.yaml, ~/.config/attackmap/config.yaml,
# or /etc/attackmap/config.yaml. Environment variables with the
# ATTACKMAP_ prefix override file settings.

version: "1.0"

# Embedding and completion provider.
provider:
  # Provider backend: ollama or openai.
  name: ollama

  # Model used to embed the behavior description and techniques.
  embedding_model: all-minilm

  # Model used for --explain rationales.
  completion_model: llama3.2

  # API endpoint. Defaults to http://localhost:11434 for ollama
  # and https://api.openai.com for openai.
  endpoint: http://localhost:11434

  # API key, required for openai. Prefer the ATTACKMAP_PROVIDER_API_KEY
  # environment variable over storing the key here.
  api_key: ""

  # Per-request timeout.
  timeout: 60s

# ATT&CK technique corpus.
corpus:
  # STIX bundle location. Empty uses the official MITRE bundle.
  bundle_url: ""

  # How long the cached corpus stays fresh.
  ttl: 168h

  # Serve only from the local snapshot, never hit the network.
  offline: false

# Ranking behavior.
match:
  # Number of techniques to return.
  top_k: 3

  # Drop matches below this similarity. 0 disables the filter.
  min_score: 0

  # Always generate an LLM rationale for the top matches.
  explain: false

  # End-to-end match timeout.
  timeout: 5m

# Local caches.
storage:
  cache_dir: ~/.cache/attackmap
  vector_cache_path: ~/.cache/attackmap/vectors.json
  temp_dir: /tmp/attackmap

# Output formatting.
output:
  # Default output format: text, json, markdown, or csv.
  default_format: text

  # Color mode: auto, always, or never.
  color_mode: auto

  verbose: false
  show_progress: true

# Alert-log watching.
watch:
  # Minimum log level that triggers a match: debug, info, warn, error.
  min_level: warn

  # How long a file must stay quiet before new lines are read.
  debounce: 500ms

  # Minimum similarity for a technique to be reported.
  threshold: 0.35
`
}

// MinimalSampleConfig returns a compact configuration with only the
// settings most installs change.
func MinimalSampleConfig() string {
	return `# AttackMap configuration
version: "1.0"

provider:
  name: ollama
  embedding_model: all-minilm
  endpoint: http://localhost:11434

match:
  top_k: 3

output:
  default_format: text
`
}
