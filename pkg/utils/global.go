package utils

//DetectionBatchSize is the number of consecutive frames sent to the detector in one call
const DetectionBatchSize = 20

//DetectionConfidence is the minimum confidence the detector reports a box with
const DetectionConfidence = 0.1

//BallTrackID is the single identity every ball record is stored under
const BallTrackID = 1

//MaxPlayerBallDistance is the distance (in pixels) from a player's foot to the ball under which the player can own the ball
const MaxPlayerBallDistance = 70

//OutputFPS is the frame rate of every written video, regardless of the input frame rate
const OutputFPS = 24

//Class names as reported by the detector's vocabulary
const (
	PlayerClassName     = "player"
	GoalkeeperClassName = "goalkeeper"
	RefereeClassName    = "referee"
	BallClassName       = "ball"
)

//ScoreboardAlpha is the opacity of the possession panel drawn over each frame
const ScoreboardAlpha = 0.4
