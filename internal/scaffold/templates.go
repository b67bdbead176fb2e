package scaffold

const metadataTemplate = `name: {{.Name}}
title: {{.Title}}
version: 1.0.0
description: {{.Title}} plugin
package_format_version: '{{.FormatVersion}}'
{{- if .Provenance}}
authors:
  - Your Name <you@example.com>
licenses:
  - Apache License Version 2.0
homepage: https://example.com/{{.Name}}
{{- end}}
groups: []
releases:
  - os: ubuntu
    os_version: '22.04'
    deployment_mode: ha
    deployment_scripts_path: deployment_scripts/
    repository_path: repositories/ubuntu
  - os: centos
    os_version: '9'
    deployment_mode: ha
    deployment_scripts_path: deployment_scripts/
    repository_path: repositories/centos
`

const tasksTemplate = `- id: {{.Name}}_deploy
  type: shell
  stage: deployment
  role: '*'
  parameters:
    cmd: bash deploy.sh
    timeout: 42
`

const envConfigTemplate = `attributes:
  {{.Name}}_text:
    type: text
    label: Example text attribute
    default: example
`

const deployScriptTemplate = `#!/bin/bash
# Deployment logic for {{.Name}} goes here.
set -eu

echo "{{.Name}} deployed" > /tmp/{{.Name}}
`
