package config

const (
	defaultCommandFile = "commands.txt"
	defaultStateDir    = "~/.local/share/batchenc"
	defaultThreads     = 4
	defaultFFmpeg      = "ffmpeg"
	defaultFFprobe     = "ffprobe"
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
	defaultNtfyTimeout = 10
)

var (
	defaultAllowedExtensions = []string{".avi", ".m2ts", ".mkv", ".mp4", ".wmv"}
	defaultModes             = []string{"VBR", "CBR"}
	defaultCRFs              = []int{12, 15, 18, 21, 24}
	defaultAudioLanguages    = []string{"en"}
)

func defaultVideoFilters() []VideoFilter {
	return []VideoFilter{
		{Name: "filtered", Graph: "hqdn3d=0:0:3:3,gradfun,unsharp"},
		{Name: "lightdenoise", Graph: "hqdn3d=0:0:3:3"},
		{Name: "heavydenoise", Graph: "hqdn3d=1.5:1.5:6:6"},
		{Name: "unsharp", Graph: "unsharp"},
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Encoding: Encoding{
			AllowedExtensions: append([]string(nil), defaultAllowedExtensions...),
			Modes:             append([]string(nil), defaultModes...),
			CRFs:              append([]int(nil), defaultCRFs...),
			Threads:           defaultThreads,
			LimitSize:         true,
			IncludeUnfiltered: true,

			PreferredAudioLanguages: append([]string(nil), defaultAudioLanguages...),
		},
		VideoFilters: defaultVideoFilters(),
		Paths: Paths{
			CommandFile: defaultCommandFile,
			StateDir:    defaultStateDir,
		},
		Binaries: Binaries{
			FFmpeg:  defaultFFmpeg,
			FFprobe: defaultFFprobe,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Journal: Journal{
			Enabled: true,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
	}
}
