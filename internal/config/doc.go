// Package config defines configuration structures for the skyfetch CLI.
//
// Configuration can be provided via, in increasing order of precedence:
//   - Built-in defaults ([Default])
//   - YAML configuration file ([LoadFromFile])
//   - Environment variables (SKYFETCH_ prefix, [Config.LoadFromEnv])
//   - Command-line flags ([Config.Merge])
//
// # File format
//
//	input_url_list: url_list.txt
//	output_directory: data
//	workers: 16
//	timeout: 10m
//	buffer_size: 1MiB
//	fail_fast: false
//	atomic_writes: true
//	lock: false
//	min_free_space: 50GiB
//	progress: true
//	user_agent: skyfetch
//
// Sizes take SI (KB, MB, GB) or IEC (KiB, MiB, GiB) suffixes.
// Booleans accept anything [strconv.ParseBool] does.
package config
