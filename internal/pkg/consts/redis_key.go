package consts

const (
	DispatchClaimKey = "dispatch:claim:"
	UpcomingPostsKey = "post:upcoming:"
)
