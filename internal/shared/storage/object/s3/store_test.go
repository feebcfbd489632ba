package s3

import "testing"

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "seeker/front.jpg", want: "seeker/front.jpg"},
		{name: "simple prefix", prefix: "root", key: "seeker/front.jpg", want: "root/seeker/front.jpg"},
		{name: "prefix trailing slash", prefix: "root/", key: "seeker/front.jpg", want: "root/seeker/front.jpg"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/seeker/front.jpg", want: "root/seeker/front.jpg"},
		{name: "nested prefix", prefix: "root/sub", key: "seeker/front.jpg", want: "root/sub/seeker/front.jpg"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}
