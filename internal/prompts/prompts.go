// Package prompts assembles the system prompts for the agent, the user
// simulator and the judge panel, localized zh/en.
package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vitabench/vita/internal/lang"
	"github.com/vitabench/vita/internal/message"
)

// StopToken ends a simulation when either side emits it.
const StopToken = "###STOP###"

// AgentSystemPrompt formats the task's agent instructions with the
// simulated time (instructions carry a {time} placeholder).
func AgentSystemPrompt(instructions, timeWithWeekday string) string {
	return strings.ReplaceAll(instructions, "{time}", timeWithWeekday)
}

const soloAgentSystemPromptEN = `You are an autonomous agent operating without a customer in the loop.
The current time is {time}.
Complete the task using tool calls only. Never write conversational replies.
When the task is fully complete, reply with ` + StopToken + ` and nothing else.`

const soloAgentSystemPromptZH = `你是一个无需与顾客交互的自主智能体。
当前时间为{time}。
只能通过工具调用完成任务，禁止输出对话内容。
当任务全部完成后，仅回复` + StopToken + `。`

// SoloAgentSystemPrompt is the policy for the no-user agent variant.
func SoloAgentSystemPrompt(timeWithWeekday string, language lang.Language) string {
	p := soloAgentSystemPromptZH
	if language == lang.English {
		p = soloAgentSystemPromptEN
	}
	return strings.ReplaceAll(p, "{time}", timeWithWeekday)
}

const userSystemPromptEN = `You are playing a customer talking to the assistant of a life-services platform.
Stay strictly in character. Your profile:
%s

Rules:
- Reveal information only as the conversation naturally requires it.
- Never act as the assistant, and never call tools.
- Speak in short, natural messages, one intention at a time.
- When everything you wanted is done (or clearly impossible), reply with %s and nothing else.`

const userSystemPromptZH = `你正在扮演一名生活服务平台的顾客，与平台助手对话。
请严格保持角色设定。你的画像：
%s

规则：
- 只在对话自然需要时透露信息。
- 不要扮演助手，也不要调用工具。
- 用简短自然的语句表达，每次只表达一个意图。
- 当你的需求全部完成（或明确无法完成）时，仅回复%s。`

// UserSystemPrompt embeds the simulated user's profile.
func UserSystemPrompt(profile map[string]any, language lang.Language) string {
	blob, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		blob = []byte("{}")
	}
	if language == lang.English {
		return fmt.Sprintf(userSystemPromptEN, string(blob), StopToken)
	}
	return fmt.Sprintf(userSystemPromptZH, string(blob), StopToken)
}

// judge prompt templates. The verdict must be a JSON array of rubric
// judgments so the evaluator can extract a scalar reward.
const judgeHeaderEN = `You are a strict evaluator of a conversation between a customer and a life-services assistant.
Judge whether the assistant completed the customer's task correctly, using the conversation%s below.`

const judgeHeaderZH = `你是一名严格的评审，评估顾客与生活服务助手之间的对话。
请根据下面的对话%s判断助手是否正确完成了顾客的任务。`

const judgeRubricSectionEN = `
Evaluate each rubric below against the conversation:
%s`

const judgeRubricSectionZH = `
请逐条对照以下评分标准进行评估：
%s`

const judgeNoRubricSectionEN = `
No explicit rubrics are provided. Infer the success criteria from the customer's requests and judge whether each was satisfied; produce one judgment per inferred criterion.`

const judgeNoRubricSectionZH = `
未提供显式评分标准。请从顾客的诉求中推断成功标准，逐条判断是否满足，每条输出一个判断。`

const judgeStateSectionEN = `
Final environment state:
%s`

const judgeStateSectionZH = `
最终环境状态：
%s`

const judgeFooterEN = `
Respond with ONLY a JSON array; each element must be an object:
{"rubrics": "<the criterion>", "reasoning": "<why it is or is not met>", "meetExpectation": true|false}`

const judgeFooterZH = `
只输出一个JSON数组；每个元素必须是如下对象：
{"rubrics": "<评分标准>", "reasoning": "<是否满足的理由>", "meetExpectation": true|false}`

// SlidingWindowMessages is how many trailing messages a windowed judge
// view keeps.
const SlidingWindowMessages = 40

// RenderTrajectory flattens a trajectory into judge-readable text.
func RenderTrajectory(messages []message.Message) string {
	var sb strings.Builder
	for i := range messages {
		m := &messages[i]
		switch m.Role {
		case message.RoleSystem:
			continue
		case message.RoleTool:
			fmt.Fprintf(&sb, "[tool:%s] %s\n", m.Name, m.Content)
		case message.RoleAssistant:
			if m.IsToolCall() {
				for _, tc := range m.ToolCalls {
					args, _ := json.Marshal(tc.Arguments)
					fmt.Fprintf(&sb, "[assistant→%s] %s\n", tc.Name, string(args))
				}
			}
			if m.Content != "" {
				fmt.Fprintf(&sb, "[assistant] %s\n", m.Content)
			}
		default:
			fmt.Fprintf(&sb, "[%s] %s\n", m.Role, m.Content)
		}
	}
	return sb.String()
}

// JudgePrompt builds the evaluation prompt. windowed selects the trailing
// slice of the trajectory; withRubrics includes the task's rubric list.
func JudgePrompt(trajectory []message.Message, rubrics []string, finalState string,
	windowed, withRubrics bool, language lang.Language) string {

	view := trajectory
	scopeEN, scopeZH := "", ""
	if windowed && len(view) > SlidingWindowMessages {
		view = view[len(view)-SlidingWindowMessages:]
		scopeEN = " (most recent part)"
		scopeZH = "（最近部分）"
	}

	var sb strings.Builder
	if language == lang.English {
		fmt.Fprintf(&sb, judgeHeaderEN, scopeEN)
	} else {
		fmt.Fprintf(&sb, judgeHeaderZH, scopeZH)
	}
	sb.WriteString("\n\nConversation:\n")
	sb.WriteString(RenderTrajectory(view))
	if finalState != "" {
		if language == lang.English {
			fmt.Fprintf(&sb, judgeStateSectionEN, finalState)
		} else {
			fmt.Fprintf(&sb, judgeStateSectionZH, finalState)
		}
	}
	if withRubrics && len(rubrics) > 0 {
		numbered := make([]string, len(rubrics))
		for i, r := range rubrics {
			numbered[i] = fmt.Sprintf("%d. %s", i+1, r)
		}
		if language == lang.English {
			fmt.Fprintf(&sb, judgeRubricSectionEN, strings.Join(numbered, "\n"))
		} else {
			fmt.Fprintf(&sb, judgeRubricSectionZH, strings.Join(numbered, "\n"))
		}
	} else {
		if language == lang.English {
			sb.WriteString(judgeNoRubricSectionEN)
		} else {
			sb.WriteString(judgeNoRubricSectionZH)
		}
	}
	if language == lang.English {
		sb.WriteString(judgeFooterEN)
	} else {
		sb.WriteString(judgeFooterZH)
	}
	return sb.String()
}
