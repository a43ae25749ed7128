package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/cardiocare/internal/adapters/predictor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestQuizCommand(t *testing.T) {
	tests := []struct {
		name    string
		stdin   string
		args    []string
		want    []string
		wantErr bool
	}{
		{
			name: "answers flag",
			args: []string{"quiz", "--answers", "3,2,1,2,2,2"},
			want: []string{"Score: 7/17", "Risk:  Moderate", "Consider making some lifestyle improvements."},
		},
		{
			name: "lowest risk",
			args: []string{"quiz", "--answers", "1,1,1,1,1,1"},
			want: []string{"Score: 0/17", "Risk:  Low"},
		},
		{
			name:  "interactive with a bad entry",
			stdin: "x\n9\n5\n2\n3\n4\n4\n3\n",
			args:  []string{"quiz"},
			want:  []string{"Please enter a number.", "Please choose 1-5.", "Score: 17/17", "Risk:  High"},
		},
		{
			name:    "wrong answer count",
			args:    []string{"quiz", "--answers", "1,2"},
			wantErr: true,
		},
		{
			name:    "input ends early",
			stdin:   "1\n",
			args:    []string{"quiz"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.stdin, tt.args...)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestClassifyCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{"bmi from value", []string{"classify", "bmi", "--bmi", "17"}, "BMI 17.0: Underweight (info)", false},
		{"bmi from weight and height", []string{"classify", "bmi", "--weight", "70", "--height", "175"}, "BMI 22.9: Normal (good)", false},
		{"bmi missing input", []string{"classify", "bmi"}, "", true},
		{"bp stage 1 by first match", []string{"classify", "bp", "--systolic", "135", "--diastolic", "70"}, "135/70 mmHg: Stage 1 (warning)", false},
		{"bp alias", []string{"classify", "blood-pressure", "--systolic", "118", "--diastolic", "76"}, "Normal (good)", false},
		{"bp missing input", []string{"classify", "bp", "--systolic", "120"}, "", true},
		{"heart rate", []string{"classify", "hr", "--bpm", "55"}, "55 bpm: Low (info)", false},
		{"heart rate missing input", []string{"classify", "hr"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, "", tt.args...)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestPredictCommand(t *testing.T) {
	var got predictor.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"prediction": 1, "message": "elevated risk"}`))
	}))
	defer srv.Close()

	t.Setenv("CARDIO_DEFAULT_COUNTRY", "Chile")

	t.Run("all fields from flags", func(t *testing.T) {
		out, err := run(t, "", "predict", "--url", srv.URL, "--interactive=false",
			"--set", "age=54,gender=1,height=172,weight=81.5,ap_hi=135,ap_lo=88",
			"--set", "cholesterol=2,gluc=1,smoke=0,alco=0,active=1")
		require.NoError(t, err)
		assert.Contains(t, out, "Prediction:     high risk")
		assert.Contains(t, out, "elevated risk")
		assert.Contains(t, out, "BMI:            27.5 (Overweight)")
		assert.Equal(t, "Chile", got.Country)
		assert.Equal(t, "Not specified", got.Occupation)
		assert.Equal(t, 135, got.APHi)
	})

	t.Run("missing fields are prompted", func(t *testing.T) {
		stdin := strings.Join([]string{
			"300", "54", // age: out of range, then valid
			"1", "172", "81.5", "Nurse",
			"135", "88", "2", "1",
			"0", "0", "1",
		}, "\n") + "\n"
		out, err := run(t, stdin, "predict", "--url", srv.URL)
		require.NoError(t, err)
		assert.Contains(t, out, "must be between 1 and 120")
		assert.Contains(t, out, "Prediction:     high risk")
		assert.Equal(t, "Nurse", got.Occupation)
	})

	t.Run("incomplete form is refused", func(t *testing.T) {
		_, err := run(t, "", "predict", "--url", srv.URL, "--interactive=false", "--set", "age=54")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "form incomplete")
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := run(t, "", "predict", "--url", srv.URL, "--interactive=false", "--set", "shoe=9")
		require.Error(t, err)
	})
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "cardioctl (devel)\n", out)
}
