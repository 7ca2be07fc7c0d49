// conf/defaults.go default values for settings
package conf

import "github.com/spf13/viper"

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "camsift")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "camsift.log")
	viper.SetDefault("main.log.maxsizemb", 100)
	viper.SetDefault("main.log.maxbackups", 3)
	viper.SetDefault("main.log.maxagedays", 28)

	viper.SetDefault("input.chunkindex", "data/chunks/chunks_index.json")
	viper.SetDefault("input.detectionsdir", "data/detections")

	// The activity filter historically used its own threshold set,
	// configured independently from the event detector.
	viper.SetDefault("activityfilter.confthreshold", 0.5)
	viper.SetDefault("activityfilter.minbboxarea", 2000)
	viper.SetDefault("activityfilter.maxbboxarea", 500000)
	viper.SetDefault("activityfilter.minaspectratio", 0.3)
	viper.SetDefault("activityfilter.maxaspectratio", 4.0)
	viper.SetDefault("activityfilter.minpersonframes", 30)
	viper.SetDefault("activityfilter.samplerate", 15)

	viper.SetDefault("eventdetector.confthreshold", 0.5)
	viper.SetDefault("eventdetector.minbboxarea", 2000)
	viper.SetDefault("eventdetector.maxbboxarea", 500000)
	viper.SetDefault("eventdetector.minaspectratio", 0.3)
	viper.SetDefault("eventdetector.maxaspectratio", 4.0)
	viper.SetDefault("eventdetector.mintracklength", 15)
	viper.SetDefault("eventdetector.mineventdurationseconds", 1.0)
	// 0 derives one second of frames from the chunk fps.
	viper.SetDefault("eventdetector.maxgapframes", 0)
	viper.SetDefault("eventdetector.mintrackconfidenceavg", 0.55)
	viper.SetDefault("eventdetector.requiremotion", false)
	viper.SetDefault("eventdetector.mintrackmovementpixels", 12.0)

	viper.SetDefault("labeler.normalmaxduration", 2.0)
	viper.SetDefault("labeler.suspiciousminduration", 10.0)
	viper.SetDefault("labeler.suspiciousminframes", 150)
	viper.SetDefault("labeler.highconfidencethreshold", 0.7)

	viper.SetDefault("pipeline.workers", 0)
	viper.SetDefault("pipeline.statefile", "")

	viper.SetDefault("output.path", "data/output")
	viper.SetDefault("output.sqlite.enabled", false)
	viper.SetDefault("output.sqlite.path", "camsift.db")
	viper.SetDefault("output.metrics.enabled", false)
	viper.SetDefault("output.metrics.listen", "0.0.0.0:8090")
}
