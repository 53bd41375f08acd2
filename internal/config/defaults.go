package config

const (
	defaultOutputDir         = "./agentpack-out"
	defaultStateDir          = "~/.local/share/agentpack"
	defaultMaxAtlasWidth     = 2048
	defaultAtlasWidthMode    = WidthModeFixed
	defaultAtlasStrategy     = StrategyShelf
	defaultAtlasImageName    = "atlas.png"
	defaultDecodeWorkers     = 8
	defaultAudioFormat       = "mp3"
	defaultFFmpegBinary      = "ffmpeg"
	defaultFFprobeBinary     = "ffprobe"
	defaultAudioWorkers      = 4
	defaultAudioTimeout      = 120
	defaultAudioDirectory    = "sounds"
	defaultEncoding          = "windows-1252"
	defaultAnimationManifest = "animations.json"
	defaultSoundManifest     = "sounds.json"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Atlas width modes.
const (
	WidthModeFixed = "fixed"
	WidthModeFit   = "fit"
)

// Atlas packing strategies.
const (
	StrategyShelf = "shelf"
	StrategyGrid  = "grid"
)

// SupportedAudioFormats lists the audio output formats the transcoder accepts.
var SupportedAudioFormats = []string{"mp3", "ogg", "opus", "m4a", "wav"}

// SupportedEncodings lists the description code pages that can be decoded.
var SupportedEncodings = []string{"windows-1252", "iso-8859-1", "utf-8"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			StateDir:  defaultStateDir,
		},
		Atlas: Atlas{
			MaxWidth:      defaultMaxAtlasWidth,
			WidthMode:     defaultAtlasWidthMode,
			Strategy:      defaultAtlasStrategy,
			ImageName:     defaultAtlasImageName,
			DecodeWorkers: defaultDecodeWorkers,
		},
		Audio: Audio{
			OutputFormat:   defaultAudioFormat,
			FFmpegBinary:   defaultFFmpegBinary,
			FFprobeBinary:  defaultFFprobeBinary,
			Workers:        defaultAudioWorkers,
			TimeoutSeconds: defaultAudioTimeout,
			Directory:      defaultAudioDirectory,
		},
		Description: Description{
			Encoding: defaultEncoding,
		},
		Output: Output{
			AnimationManifest: defaultAnimationManifest,
			SoundManifest:     defaultSoundManifest,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
