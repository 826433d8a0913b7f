package sentiment

// LLM prompt templates. Data only, no logic.

// sentimentPromptHead states the task and the input caveats.
// Args: channel title, video title.
const sentimentPromptHead = `Perform sentiment analysis on the following comments of a youtube video posted by "%s" with title "%s" and classify it as one of the given labels: the text is hindi written as english, is given in individual numerical points.`

// rollupPromptHead is the channel variant; comments are grouped per video below it.
// Args: channel title, number of videos.
const rollupPromptHead = `Perform sentiment analysis on the following comments of the %[2]d most recent youtube videos posted by "%[1]s" and classify each comment as one of the given labels: the text is hindi written as english, is given in individual numerical points numbered continuously across all videos.`

// Output-format constraints. Each one matches exactly one decoder tokenizer.
const (
	formatCommaList     = `the output should only contain comma separated labels without spaces and nothing else.`
	formatNumberedLines = `the output should only contain the bullet point number a full stop then label and nothing else, one per line.`
)

const ignoreMarkup = `ignore the youtube links and html tags.`

// insightsRequest asks for the Summary/Suggestions block after the label list.
const insightsRequest = `after classification summarise and give suggestions that the creator can do to improve his videos based on the following comments in 300 words, output only in this format and nothing else :
Summary: ......
Suggestions: .......`

// labelsLine lists the label set low to high.
// Args: comma-joined labels.
const labelsLine = `Labels: %s.`

// chatSeedPrompt opens a comment conversation.
// Args: numbered comments.
const chatSeedPrompt = `You are an assistant that helps analyze YouTube comments. Here are the comments:

%s`

// commentsHeader precedes every numbered comment list.
const commentsHeader = `comments:`

// videoSectionHeader labels one video's comments inside a rollup prompt.
// Args: 1-based video index, video title.
const videoSectionHeader = `video %d: "%s"`
