package settings

// Setting keys.
const (
	KeyRoot         = "root"
	KeyWriteAtomic  = "write.atomic"
	KeyWritePrune   = "write.prune"
	KeyFileMode     = "write.file-mode"
	KeyLogLevel     = "log.level"
	KeyTemplatesDir = "templates.dir"
)

// DefaultRoot is where systemd-boot keeps loader.conf on most installs.
const DefaultRoot = "/efi/loader"

// DefaultValues returns the default settings map.
func DefaultValues() map[string]string {
	return map[string]string{
		KeyRoot:         DefaultRoot,
		KeyWriteAtomic:  "true",
		KeyWritePrune:   "false",
		KeyFileMode:     "0644",
		KeyLogLevel:     "warn",
		KeyTemplatesDir: "",
	}
}

// ApplyDefaults fills any missing keys in s with their default values in
// memory only, so the settings file holds just what the user set.
func ApplyDefaults(s Store) {
	all := s.All()
	for k, v := range DefaultValues() {
		if _, exists := all[k]; !exists {
			s.SetInMemory(k, v)
		}
	}
}
