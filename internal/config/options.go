package config

// OptionDoc describes one configuration key.
type OptionDoc struct {
	Key         string
	Description string
}

// StitchOptionDocs lists the configuration keys with their descriptions,
// in the order they are presented to users.
var StitchOptionDocs = []OptionDoc{
	{
		Key: "bf_detection_enabled",
		Description: "Should bad frame detection be enabled? When a frame fails the percentage " +
			"tracked criteria, features on the start of the following shot are matched " +
			"against past frames to bridge the gap.",
	},
	{
		Key: "bf_detection_percent_match_req",
		Description: "The required percentage of features needed to be matched for a stitch " +
			"to be considered successful (value must be between 0.0 and 1.0).",
	},
	{
		Key:         "bf_detection_new_shot_length",
		Description: "Number of frames for a new shot to be considered valid before attempting to stitch to prior shots.",
	},
	{
		Key:         "bf_detection_max_search_length",
		Description: "Maximum number of frames to search in the past for matching to the end of the last shot.",
	},
	{
		Key:         "search_workers",
		Description: "Number of past frames matched concurrently. The nearest acceptable frame still wins.",
	},
	{
		Key:         "feature_matcher.type",
		Description: "Feature matching engine: \"hungarian\" (optimal assignment) or \"nearest\" (greedy nearest neighbour).",
	},
	{
		Key:         "feature_matcher.max_distance",
		Description: "Maximum descriptor L2 distance for a correspondence. 0 disables the gate.",
	},
	{
		Key:         "feature_matcher.ratio",
		Description: "Nearest to second-nearest distance ratio a match must beat. 0 disables the test.",
	},
	{
		Key:         "feature_matcher.cross_check",
		Description: "Keep only correspondences that are mutual nearest neighbours (nearest engine).",
	},
}
