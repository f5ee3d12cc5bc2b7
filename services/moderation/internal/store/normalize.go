package store

// NormalizeVotes repairs records written before a field existed: missing sets
// become empty, duplicate actor ids are dropped and every counter is set to
// the size of its set.
func NormalizeVotes(v *Votes) {
	v.UpvotedBy = uniq(v.UpvotedBy)
	v.DownvotedBy = uniq(v.DownvotedBy)
	v.LikedBy = uniq(v.LikedBy)
	v.DislikedBy = uniq(v.DislikedBy)
	v.Recount()
}

// Recount derives the counters from the membership sets.
func (v *Votes) Recount() {
	v.Upvotes = len(v.UpvotedBy)
	v.Downvotes = len(v.DownvotedBy)
	v.Likes = len(v.LikedBy)
	v.Dislikes = len(v.DislikedBy)
}

func uniq(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func normalizeThread(t *Thread) { NormalizeVotes(&t.Votes) }
func normalizeAnswer(a *Answer) { NormalizeVotes(&a.Votes) }
