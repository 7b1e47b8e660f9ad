package master

func containsInfo(info []string, want string) bool {
	for _, s := range info {
		if s == want {
			return true
		}
	}
	return false
}
